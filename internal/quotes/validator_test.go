package quotes

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
)

func validQuote() *models.Quote {
	email := "guest@example.com"
	return &models.Quote{
		ID:              uuid.New(),
		IsOpen:          true,
		Email:           &email,
		ShippingAddress: &models.Address{},
		BillingAddress:  &models.Address{},
		Items:           []models.QuoteItem{{ID: uuid.New(), Quantity: 1}},
	}
}

func hasViolation(violations []pkgerrors.Violation, message, field string) bool {
	for _, v := range violations {
		if v.Message == message && v.Field() == field {
			return true
		}
	}
	return false
}

func TestCheckValidGuestQuote(t *testing.T) {
	t.Parallel()

	if violations := Check(validQuote()); len(violations) != 0 {
		t.Fatalf("expected no violations, got %+v", violations)
	}
}

func TestCheckCustomerQuoteNeedsNoEmail(t *testing.T) {
	t.Parallel()

	quote := validQuote()
	customerID := uuid.New()
	quote.CustomerID = &customerID
	quote.Email = nil
	if violations := Check(quote); len(violations) != 0 {
		t.Fatalf("expected no violations, got %+v", violations)
	}
}

func TestCheckClosedQuote(t *testing.T) {
	t.Parallel()

	quote := validQuote()
	quote.IsOpen = false
	if !hasViolation(Check(quote), "The quote must be open", "IsOpen") {
		t.Fatalf("expected open violation")
	}
}

func TestCheckGuestEmail(t *testing.T) {
	t.Parallel()

	quote := validQuote()
	quote.Email = nil
	if !hasViolation(Check(quote), "An email is required for guest orders", "Email") {
		t.Fatalf("expected missing email violation")
	}

	blank := "  "
	quote.Email = &blank
	if !hasViolation(Check(quote), "An email is required for guest orders", "Email") {
		t.Fatalf("expected blank email violation")
	}

	bad := "not-an-email"
	quote.Email = &bad
	if !hasViolation(Check(quote), "A valid email is required", "Email") {
		t.Fatalf("expected invalid email violation")
	}
}

func TestCheckAddressesAndItems(t *testing.T) {
	t.Parallel()

	quote := validQuote()
	quote.ShippingAddress = nil
	quote.BillingAddress = nil
	quote.Items = nil

	violations := Check(quote)
	if !hasViolation(violations, "A shipping address is required", "ShippingAddress") {
		t.Fatalf("expected shipping violation")
	}
	if !hasViolation(violations, "A billing address is required", "BillingAddress") {
		t.Fatalf("expected billing violation")
	}
	if !hasViolation(violations, "At least one item is required", "Items") {
		t.Fatalf("expected items violation")
	}
}

func TestCheckQuantityRangeScopedToItem(t *testing.T) {
	t.Parallel()

	quote := validQuote()
	zero := models.QuoteItem{ID: uuid.New(), Quantity: 0}
	negative := models.QuoteItem{ID: uuid.New(), Quantity: -2}
	huge := models.QuoteItem{ID: uuid.New(), Quantity: math.MaxInt32 + 1}
	quote.Items = append(quote.Items, zero, negative, huge)

	violations := Check(quote)
	if len(violations) != 3 {
		t.Fatalf("expected 3 violations, got %+v", violations)
	}
	for _, item := range []models.QuoteItem{zero, negative, huge} {
		field := "Items." + item.ID.String() + ".Quantity"
		if !hasViolation(violations, "Quantity must be between 1 and 2147483647", field) {
			t.Fatalf("expected quantity violation at %s", field)
		}
	}
}

func TestValidateWrapsViolations(t *testing.T) {
	quote := validQuote()
	quote.Email = nil
	f := newFixture(t, quote)

	_, err := f.svc.Validate(context.Background(), quote.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation || typed.Message() != msgQuoteInvalid {
		t.Fatalf("expected %q validation error, got %v", msgQuoteInvalid, err)
	}
	if len(pkgerrors.ViolationsOf(err)) == 0 {
		t.Fatalf("expected violations")
	}
}
