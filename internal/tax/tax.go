package tax

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecart-backend/pkg/config"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
)

// Calculator returns the tax to collect for a priced cart.
type Calculator interface {
	Calculate(ctx context.Context, req Request) (decimal.Decimal, error)
}

// Address is the destination the tax is computed for.
type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Line is a priced cart line. Amount is the line total after discounts.
type Line struct {
	Reference string
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Amount    decimal.Decimal
}

type Request struct {
	QuoteID         uuid.UUID
	Currency        string
	ShippingAddress Address
	Lines           []Line
	Subtotal        decimal.Decimal
}

// New builds the configured provider wrapped in a circuit breaker.
func New(ctx context.Context, cfg config.TaxConfig, stripeCfg config.StripeConfig, logg *logger.Logger) (Calculator, error) {
	var inner Calculator
	switch cfg.ProviderName() {
	case config.TaxProviderNone:
		inner = NoTax{}
	case config.TaxProviderFlat:
		inner = NewFlatRate(cfg.Rate())
	case config.TaxProviderStripe:
		if !stripeCfg.Enabled() {
			return nil, fmt.Errorf("stripe tax provider requires a stripe api key")
		}
		inner = NewStripeCalculator(cfg.TaxCode)
	default:
		return nil, fmt.Errorf("unsupported tax provider %q", cfg.Provider)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "tax_provider", cfg.ProviderName()), "tax provider configured")
	}

	return NewBreaker(inner, BreakerSettings{
		Name:         "tax-" + cfg.ProviderName(),
		MaxRequests:  cfg.BreakerMaxRequests,
		Interval:     cfg.BreakerInterval,
		Timeout:      cfg.BreakerTimeout,
		FailureRatio: cfg.BreakerFailureRatio,
		MinRequests:  cfg.BreakerMinRequests,
	}, logg), nil
}

// NoTax never collects tax.
type NoTax struct{}

func (NoTax) Calculate(context.Context, Request) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

// FlatRate applies a single rate to the discounted subtotal.
type FlatRate struct {
	rate decimal.Decimal
}

func NewFlatRate(rate decimal.Decimal) *FlatRate {
	return &FlatRate{rate: rate}
}

func (f *FlatRate) Calculate(_ context.Context, req Request) (decimal.Decimal, error) {
	if req.Subtotal.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative subtotal %s", req.Subtotal)
	}
	return req.Subtotal.Mul(f.rate).Round(2), nil
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
