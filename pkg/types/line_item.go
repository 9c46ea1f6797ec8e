package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LinePricing is the money shape shared by quote lines and order lines.
type LinePricing struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
}

// LineItem is implemented by anything that can report its line pricing.
// Quote lines derive it from the live product; order lines return stored values.
type LineItem interface {
	Line() LinePricing
}

// LineTotals sums a set of lines into price, discount and subtotal.
func LineTotals[T LineItem](items []T) (price, discount, subtotal decimal.Decimal) {
	price, discount, subtotal = decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range items {
		line := item.Line()
		price = price.Add(line.TotalPrice)
		discount = discount.Add(line.Discount)
		subtotal = subtotal.Add(line.Total)
	}
	return price, discount, subtotal
}
