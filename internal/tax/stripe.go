package tax

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/tax/calculation"
)

type calculationAPI interface {
	New(params *stripe.TaxCalculationParams) (*stripe.TaxCalculation, error)
}

type stripeCalculations struct{}

func (stripeCalculations) New(params *stripe.TaxCalculationParams) (*stripe.TaxCalculation, error) {
	return calculation.New(params)
}

// StripeCalculator asks Stripe Tax for the exclusive tax on the cart. The
// global stripe key is set by pkg/stripe at startup.
type StripeCalculator struct {
	api     calculationAPI
	taxCode string
}

func NewStripeCalculator(taxCode string) *StripeCalculator {
	return &StripeCalculator{api: stripeCalculations{}, taxCode: strings.TrimSpace(taxCode)}
}

func (c *StripeCalculator) Calculate(ctx context.Context, req Request) (decimal.Decimal, error) {
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "usd"
	}

	addr := req.ShippingAddress
	params := &stripe.TaxCalculationParams{
		Currency: stripe.String(currency),
		CustomerDetails: &stripe.TaxCalculationCustomerDetailsParams{
			Address: &stripe.AddressParams{
				Line1:      stripe.String(addr.Line1),
				City:       stripe.String(addr.City),
				PostalCode: stripe.String(addr.PostalCode),
				Country:    stripe.String(addr.Country),
			},
			AddressSource: stripe.String("shipping"),
		},
		LineItems: make([]*stripe.TaxCalculationLineItemParams, 0, len(req.Lines)),
	}
	if addr.Line2 != "" {
		params.CustomerDetails.Address.Line2 = stripe.String(addr.Line2)
	}
	if addr.State != "" {
		params.CustomerDetails.Address.State = stripe.String(addr.State)
	}
	for _, line := range req.Lines {
		item := &stripe.TaxCalculationLineItemParams{
			Amount:    stripe.Int64(toMinorUnits(line.Amount)),
			Reference: stripe.String(line.Reference),
			Quantity:  stripe.Int64(int64(line.Quantity)),
		}
		if c.taxCode != "" {
			item.TaxCode = stripe.String(c.taxCode)
		}
		params.LineItems = append(params.LineItems, item)
	}
	params.Context = ctx

	calc, err := c.api.New(params)
	if err != nil {
		return decimal.Zero, fmt.Errorf("stripe tax calculation: %w", err)
	}
	return fromMinorUnits(calc.TaxAmountExclusive), nil
}
