package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecart-backend/internal/tax"
	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
	"github.com/angelmondragon/quotecart-backend/pkg/metrics"
)

type taxWriter interface {
	UpdateTax(ctx context.Context, quoteID uuid.UUID, tax decimal.Decimal) error
}

// TaxCalculator refreshes a quote's stored tax. Provider failures never
// surface to the caller; the quote is left untaxed instead.
type TaxCalculator struct {
	repo     taxWriter
	provider tax.Calculator
	currency string
	metrics  *metrics.QuoteMetrics
	logg     *logger.Logger
}

func NewTaxCalculator(repo taxWriter, provider tax.Calculator, currency string, m *metrics.QuoteMetrics, logg *logger.Logger) (*TaxCalculator, error) {
	if repo == nil {
		return nil, fmt.Errorf("tax writer required")
	}
	if provider == nil {
		return nil, fmt.Errorf("tax provider required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &TaxCalculator{repo: repo, provider: provider, currency: currency, metrics: m, logg: logg}, nil
}

// Recalculate resets quote.Tax, asks the provider when the quote is taxable
// and persists the result.
func (c *TaxCalculator) Recalculate(ctx context.Context, quote *models.Quote) error {
	quote.Tax = decimal.Zero
	pricing := Price(quote)

	if taxable(quote, pricing) {
		started := time.Now()
		amount, err := c.provider.Calculate(ctx, buildTaxRequest(quote, pricing, c.currency))
		if err != nil {
			c.metrics.ObserveTaxProvider(metrics.TaxOutcomeFailed, time.Since(started))
			c.metrics.IncTaxCalculation(metrics.TaxOutcomeFailed)
			logCtx := c.logg.WithQuoteID(ctx, quote.ID.String())
			c.logg.Error(logCtx, "tax calculation failed; quote left untaxed", err)
		} else {
			c.metrics.ObserveTaxProvider(metrics.TaxOutcomeCalculated, time.Since(started))
			c.metrics.IncTaxCalculation(metrics.TaxOutcomeCalculated)
			quote.Tax = amount
		}
	} else {
		c.metrics.IncTaxCalculation(metrics.TaxOutcomeSkipped)
	}

	if err := c.repo.UpdateTax(ctx, quote.ID, quote.Tax); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist quote tax")
	}
	return nil
}

func taxable(quote *models.Quote, pricing Pricing) bool {
	return !pricing.Subtotal.IsZero() && len(quote.Items) > 0 && quote.ShippingAddress != nil
}

func buildTaxRequest(quote *models.Quote, pricing Pricing, currency string) tax.Request {
	lines := make([]tax.Line, 0, len(pricing.Items))
	for _, item := range pricing.Items {
		line := item.Line()
		lines = append(lines, tax.Line{
			Reference: item.Item.ID.String(),
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Discount:  line.Discount,
			Amount:    line.Total,
		})
	}
	return tax.Request{
		QuoteID:         quote.ID,
		Currency:        currency,
		ShippingAddress: taxAddress(quote.ShippingAddress),
		Lines:           lines,
		Subtotal:        pricing.Subtotal,
	}
}

func taxAddress(address *models.Address) tax.Address {
	if address == nil {
		return tax.Address{}
	}
	out := tax.Address{
		Line1:      address.Line1,
		City:       address.City,
		PostalCode: address.PostalCode,
	}
	if address.Line2 != nil {
		out.Line2 = *address.Line2
	}
	if address.Country != nil {
		out.Country = address.Country.Code
	}
	if address.State != nil {
		out.State = address.State.Code
	}
	return out
}
