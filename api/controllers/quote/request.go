package quote

import (
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/quotecart-backend/internal/payments"
	"github.com/angelmondragon/quotecart-backend/internal/quotes"
	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
)

type addressPayload struct {
	FirstName  string     `json:"first_name" validate:"required,max=100"`
	LastName   string     `json:"last_name" validate:"required,max=100"`
	Company    *string    `json:"company" validate:"omitempty,max=200"`
	Line1      string     `json:"line1" validate:"required,max=200"`
	Line2      *string    `json:"line2" validate:"omitempty,max=200"`
	City       string     `json:"city" validate:"required,max=100"`
	PostalCode string     `json:"postal_code" validate:"required,max=20"`
	Phone      *string    `json:"phone" validate:"omitempty,max=40"`
	CountryID  uuid.UUID  `json:"country_id" validate:"required"`
	StateID    *uuid.UUID `json:"state_id"`
}

func (p addressPayload) toModel() *models.Address {
	return &models.Address{
		FirstName:  strings.TrimSpace(p.FirstName),
		LastName:   strings.TrimSpace(p.LastName),
		Company:    p.Company,
		Line1:      strings.TrimSpace(p.Line1),
		Line2:      p.Line2,
		City:       strings.TrimSpace(p.City),
		PostalCode: strings.TrimSpace(p.PostalCode),
		Phone:      p.Phone,
		CountryID:  p.CountryID,
		StateID:    p.StateID,
	}
}

// addressRequest references a saved address by id or carries a new one.
type addressRequest struct {
	ID      *uuid.UUID      `json:"id"`
	Address *addressPayload `json:"address" validate:"omitempty"`
}

func (a *addressRequest) toInput() *quotes.AddressInput {
	if a == nil {
		return nil
	}
	input := &quotes.AddressInput{ID: a.ID}
	if a.Address != nil {
		input.Address = a.Address.toModel()
	}
	return input
}

type updateQuoteRequest struct {
	Email           *string         `json:"email" validate:"omitempty,max=254"`
	ShippingAddress *addressRequest `json:"shipping_address" validate:"omitempty"`
	BillingAddress  *addressRequest `json:"billing_address" validate:"omitempty"`
	CouponCode      *string         `json:"coupon_code" validate:"omitempty,max=64"`
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  *int      `json:"quantity" validate:"required"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type nonceRequest struct {
	Value      string `json:"value" validate:"max=512"`
	Descriptor string `json:"descriptor" validate:"max=64"`
}

type checkoutRequest struct {
	PaymentNonce *nonceRequest `json:"payment_nonce" validate:"omitempty"`
}

func (c checkoutRequest) nonce() payments.Nonce {
	if c.PaymentNonce == nil {
		return payments.Nonce{}
	}
	return payments.Nonce{Value: c.PaymentNonce.Value, Descriptor: c.PaymentNonce.Descriptor}
}
