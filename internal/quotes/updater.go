package quotes

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/quotecart-backend/internal/catalog"
	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
)

// AddressInput names an address either by a saved id or by a full payload.
// Address wins when both are set.
type AddressInput struct {
	ID      *uuid.UUID
	Address *models.Address
}

// UpdateInput changes quote-level attributes. Nil fields are left alone,
// except CouponCode: a nil or blank code removes the coupon.
type UpdateInput struct {
	QuoteID         *uuid.UUID
	CustomerID      *uuid.UUID
	Email           *string
	ShippingAddress *AddressInput
	BillingAddress  *AddressInput
	CouponCode      *string
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Quote, error) {
	quote, err := s.resolveOrCreate(ctx, input.QuoteID, input.CustomerID)
	if err != nil {
		return nil, err
	}

	code := ""
	if input.CouponCode != nil {
		code = strings.TrimSpace(*input.CouponCode)
	}
	needsTax := code != "" && catalog.NormalizeCouponCode(code) != catalog.NormalizeCouponCode(quote.CouponCode())

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		quote.Email = &email
		if email == "" {
			quote.Email = nil
		}
	}

	if input.ShippingAddress != nil {
		address, err := s.resolveAddress(ctx, quote, quote.ShippingAddress, *input.ShippingAddress)
		if err != nil {
			return nil, err
		}
		if !address.SameAs(quote.ShippingAddress) {
			needsTax = true
		}
		quote.ShippingAddress = address
	}
	if input.BillingAddress != nil {
		address, err := s.resolveAddress(ctx, quote, quote.BillingAddress, *input.BillingAddress)
		if err != nil {
			return nil, err
		}
		quote.BillingAddress = address
	}

	if code != "" {
		coupon, err := s.catalog.FindCouponByCode(ctx, code)
		if err != nil {
			return nil, lookupError(err, "coupon")
		}
		quote.Coupon = coupon
		quote.CouponID = &coupon.ID
	} else {
		quote.Coupon = nil
		quote.CouponID = nil
	}

	if err := s.save(ctx, quote); err != nil {
		return nil, err
	}
	if needsTax {
		if err := s.taxes.Recalculate(ctx, quote); err != nil {
			return nil, err
		}
	}
	return quote, nil
}

// resolveAddress produces the address to attach: the payload itself, or a
// clone of the saved address. Country and state are always loaded. When the
// result matches current, current is kept so no new row is written. Saved
// addresses owned by another customer are reported as not found.
func (s *service) resolveAddress(ctx context.Context, quote *models.Quote, current *models.Address, input AddressInput) (*models.Address, error) {
	var owner *uuid.UUID
	if quote.BelongsToCustomer() {
		id := *quote.CustomerID
		owner = &id
	}

	var address *models.Address
	switch {
	case input.Address != nil:
		address = input.Address
		address.ID = uuid.Nil
	case input.ID != nil:
		saved, err := s.addresses.FindByID(ctx, *input.ID)
		if err != nil {
			return nil, lookupError(err, "address")
		}
		if saved.CustomerID != nil && (owner == nil || *saved.CustomerID != *owner) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		address = saved.Clone()
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id or payload required")
	}

	if address.Country == nil || address.Country.ID != address.CountryID {
		country, err := s.addresses.FindCountryByID(ctx, address.CountryID)
		if err != nil {
			return nil, lookupError(err, "country")
		}
		address.Country = country
	}
	if address.StateID != nil && (address.State == nil || address.State.ID != *address.StateID) {
		state, err := s.addresses.FindStateByID(ctx, *address.StateID)
		if err != nil {
			return nil, lookupError(err, "state")
		}
		address.State = state
	}

	if current != nil && address.SameAs(current) {
		address = current
		if address.CustomerID != nil {
			return address, nil
		}
	}
	address.CustomerID = owner
	return address, nil
}
