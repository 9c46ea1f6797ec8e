package quotes

import (
	"context"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
)

const (
	msgQuoteOpen       = "The quote must be open"
	msgEmailRequired   = "An email is required for guest orders"
	msgEmailInvalid    = "A valid email is required"
	msgShippingAddress = "A shipping address is required"
	msgBillingAddress  = "A billing address is required"
	msgItemsRequired   = "At least one item is required"
	msgQuantityRange   = "Quantity must be between 1 and 2147483647"
	msgQuoteInvalid    = "quote is invalid"

	msgQuantityTooLarge = "Quantity must not exceed 2147483647"
)

var emailValidator = validator.New()

func (s *service) Validate(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.loadOpen(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if violations := Check(quote); len(violations) > 0 {
		return nil, pkgerrors.Invalid(msgQuoteInvalid, violations...)
	}
	return quote, nil
}

// Check lists every checkout rule quote breaks.
func Check(quote *models.Quote) []pkgerrors.Violation {
	var violations []pkgerrors.Violation
	add := func(message string, path ...string) {
		violations = append(violations, pkgerrors.Violation{Path: path, Message: message})
	}

	if !quote.IsOpen {
		add(msgQuoteOpen, "IsOpen")
	}
	if !quote.BelongsToCustomer() {
		email := ""
		if quote.Email != nil {
			email = strings.TrimSpace(*quote.Email)
		}
		switch {
		case email == "":
			add(msgEmailRequired, "Email")
		case emailValidator.Var(email, "email") != nil:
			add(msgEmailInvalid, "Email")
		}
	}
	if quote.ShippingAddress == nil {
		add(msgShippingAddress, "ShippingAddress")
	}
	if quote.BillingAddress == nil {
		add(msgBillingAddress, "BillingAddress")
	}
	if len(quote.Items) == 0 {
		add(msgItemsRequired, "Items")
	}
	for _, item := range quote.Items {
		if item.Quantity < 1 || item.Quantity > math.MaxInt32 {
			add(msgQuantityRange, "Items", item.ID.String(), "Quantity")
		}
	}
	return violations
}
