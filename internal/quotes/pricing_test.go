package quotes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	"github.com/angelmondragon/quotecart-backend/pkg/enums"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func product(price string) *models.Product {
	return &models.Product{ID: uuid.New(), Price: dec(price)}
}

func TestPriceItemWithoutCoupon(t *testing.T) {
	t.Parallel()

	priced := PriceItem(models.QuoteItem{Product: product("12.50"), Quantity: 4}, nil)
	line := priced.Line()
	if !line.UnitPrice.Equal(dec("12.50")) {
		t.Fatalf("unexpected unit price %s", line.UnitPrice)
	}
	if !line.TotalPrice.Equal(dec("50")) || !line.Discount.IsZero() || !line.Total.Equal(dec("50")) {
		t.Fatalf("unexpected line %+v", line)
	}
}

func TestPriceItemUsesActualPrice(t *testing.T) {
	t.Parallel()

	p := product("30")
	p.IsDiscounted = true
	p.DiscountAmount = dec("5")
	line := PriceItem(models.QuoteItem{Product: p, Quantity: 2}, nil).Line()
	if !line.UnitPrice.Equal(dec("25")) || !line.TotalPrice.Equal(dec("50")) {
		t.Fatalf("expected discounted product price, got %+v", line)
	}
}

func TestPriceItemFixedCoupon(t *testing.T) {
	t.Parallel()

	coupon := &models.Coupon{Type: enums.CouponTypeFixed, Discount: dec("3")}
	line := PriceItem(models.QuoteItem{Product: product("20"), Quantity: 3}, coupon).Line()
	if !line.Discount.Equal(dec("9")) {
		t.Fatalf("expected discount 9, got %s", line.Discount)
	}
	if !line.Total.Equal(dec("51")) {
		t.Fatalf("expected total 51, got %s", line.Total)
	}
}

func TestPriceItemFixedCouponIsNotCapped(t *testing.T) {
	t.Parallel()

	coupon := &models.Coupon{Type: enums.CouponTypeFixed, Discount: dec("15")}
	line := PriceItem(models.QuoteItem{Product: product("10"), Quantity: 1}, coupon).Line()
	if !line.Total.Equal(dec("-5")) {
		t.Fatalf("expected uncapped total -5, got %s", line.Total)
	}
}

func TestPriceItemPercentageCoupon(t *testing.T) {
	t.Parallel()

	coupon := &models.Coupon{Type: enums.CouponTypePercentage, Discount: dec("15")}
	line := PriceItem(models.QuoteItem{Product: product("40"), Quantity: 2}, coupon).Line()
	if !line.Discount.Equal(dec("12")) {
		t.Fatalf("expected discount 12, got %s", line.Discount)
	}
	if !line.Total.Equal(dec("68")) {
		t.Fatalf("expected total 68, got %s", line.Total)
	}
}

func TestPriceItemWithoutProduct(t *testing.T) {
	t.Parallel()

	line := PriceItem(models.QuoteItem{Quantity: 3}, nil).Line()
	if !line.TotalPrice.IsZero() || !line.Total.IsZero() {
		t.Fatalf("expected zero priced line, got %+v", line)
	}
}

func TestPriceQuoteTotals(t *testing.T) {
	t.Parallel()

	quote := &models.Quote{
		Coupon: &models.Coupon{Type: enums.CouponTypeFixed, Discount: dec("1")},
		Tax:    dec("4.25"),
		Items: []models.QuoteItem{
			{ID: uuid.New(), Product: product("10"), Quantity: 2},
			{ID: uuid.New(), Product: product("5.50"), Quantity: 1},
		},
	}
	pricing := Price(quote)
	if !pricing.Price.Equal(dec("25.50")) {
		t.Fatalf("unexpected price %s", pricing.Price)
	}
	if !pricing.Discount.Equal(dec("3")) {
		t.Fatalf("unexpected discount %s", pricing.Discount)
	}
	if !pricing.Subtotal.Equal(dec("22.50")) {
		t.Fatalf("unexpected subtotal %s", pricing.Subtotal)
	}
	if !pricing.Total.Equal(dec("26.75")) {
		t.Fatalf("unexpected total %s", pricing.Total)
	}
	if pricing.ItemCount != 3 || len(pricing.Items) != 2 {
		t.Fatalf("unexpected counts %d/%d", pricing.ItemCount, len(pricing.Items))
	}
}

func TestPriceEmptyQuote(t *testing.T) {
	t.Parallel()

	pricing := Price(&models.Quote{})
	if !pricing.Subtotal.IsZero() || !pricing.Total.IsZero() || pricing.ItemCount != 0 {
		t.Fatalf("expected zero pricing, got %+v", pricing)
	}
	if nilPricing := Price(nil); !nilPricing.Total.IsZero() {
		t.Fatalf("expected zero pricing for nil quote")
	}
}
