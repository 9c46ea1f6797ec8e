package enums

import "testing"

func TestParseCouponType(t *testing.T) {
	got, err := ParseCouponType(" Percentage ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != CouponTypePercentage {
		t.Fatalf("expected percentage, got %q", got)
	}
	if _, err := ParseCouponType("bogo"); err == nil {
		t.Fatal("expected error for unknown coupon type")
	}
}

func TestOutboxEventTypes(t *testing.T) {
	if !EventOrderCreated.IsValid() {
		t.Fatal("order created should be valid")
	}
	if OutboxEventType("order.deleted").IsValid() {
		t.Fatal("unexpected valid event type")
	}
	if EventQuoteMerged.Aggregate() != AggregateQuote || EventOrderCreated.Aggregate() != AggregateOrder {
		t.Fatal("event aggregate mismatch")
	}
	if OutboxEventType("order.deleted").Aggregate() != "" {
		t.Fatal("unknown events should have no aggregate")
	}
	if !AggregateOrder.IsValid() || OutboxAggregateType("store").IsValid() {
		t.Fatal("aggregate validity mismatch")
	}
}
