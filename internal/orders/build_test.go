package orders

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	"github.com/angelmondragon/quotecart-backend/pkg/enums"
)

func TestBuildSnapshotsQuote(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	email := "guest@example.com"
	shipping := &models.Address{ID: uuid.New(), CustomerID: &customerID, Line1: "1 Main", CountryID: uuid.New()}
	billing := &models.Address{ID: uuid.New(), CustomerID: &customerID, Line1: "2 Side", CountryID: uuid.New()}
	coupon := &models.Coupon{ID: uuid.New(), Type: enums.CouponTypePercentage, Discount: decimal.NewFromInt(10)}
	product := &models.Product{ID: uuid.New(), Price: decimal.NewFromInt(50)}
	quote := &models.Quote{
		ID:              uuid.New(),
		IsOpen:          true,
		Email:           &email,
		Coupon:          coupon,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		Tax:             decimal.RequireFromString("3.60"),
		Items:           []models.QuoteItem{{ID: uuid.New(), ProductID: product.ID, Product: product, Quantity: 2}},
	}
	status := &models.OrderStatus{ID: uuid.New(), Name: enums.OrderStatusPending}
	method := &models.PaymentMethod{ID: uuid.New(), Name: enums.PaymentMethodCreditCard}

	order := Build(quote, &models.Customer{ID: customerID, Email: "account@example.com"}, status, method)

	if order.CustomerID != customerID || order.QuoteID != quote.ID || order.Email != email {
		t.Fatalf("unexpected identity fields %+v", order)
	}
	if order.CouponID == nil || *order.CouponID != coupon.ID {
		t.Fatalf("expected coupon id copied")
	}
	if !order.Price.Equal(decimal.NewFromInt(100)) || !order.Discount.Equal(decimal.NewFromInt(10)) ||
		!order.Subtotal.Equal(decimal.NewFromInt(90)) || !order.Total.Equal(decimal.RequireFromString("93.60")) {
		t.Fatalf("unexpected money %s/%s/%s/%s", order.Price, order.Discount, order.Subtotal, order.Total)
	}
	if len(order.Items) != 1 || order.Items[0].OrderID != order.ID || !order.Items[0].Total.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("unexpected items %+v", order.Items)
	}
	if order.ShippingAddress == shipping || order.ShippingAddress.ID != uuid.Nil || order.ShippingAddress.Line1 != "1 Main" {
		t.Fatalf("shipping address must be an unsaved clone")
	}
	if order.BillingAddress.CustomerID != nil || billing.CustomerID == nil {
		t.Fatalf("snapshot must not join the address book nor alter the source")
	}
	if order.OrderStatusID != status.ID || order.PaymentMethodID != method.ID {
		t.Fatalf("status and payment method not set")
	}

	product.Price = decimal.NewFromInt(999)
	if !order.Items[0].UnitPrice.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("order money must not follow later price changes")
	}
}

func TestBuildUsesCustomerEmailForCustomerQuotes(t *testing.T) {
	t.Parallel()

	quote := &models.Quote{ID: uuid.New()}
	order := Build(quote, &models.Customer{ID: uuid.New(), Email: "owner@example.com"}, &models.OrderStatus{}, &models.PaymentMethod{})
	if order.Email != "owner@example.com" {
		t.Fatalf("expected customer email, got %q", order.Email)
	}
	if len(order.Items) != 0 || !order.Total.IsZero() {
		t.Fatalf("expected empty zero order")
	}
}
