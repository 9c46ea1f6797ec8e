package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderCreatedEvent drives the order confirmation notification.
type OrderCreatedEvent struct {
	OrderID              uuid.UUID       `json:"orderId"`
	QuoteID              uuid.UUID       `json:"quoteId"`
	CustomerID           uuid.UUID       `json:"customerId"`
	Email                string          `json:"email"`
	PaymentMethod        string          `json:"paymentMethod"`
	PaymentTransactionID *string         `json:"paymentTransactionId,omitempty"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	Discount             decimal.Decimal `json:"discount"`
	Tax                  decimal.Decimal `json:"tax"`
	Total                decimal.Decimal `json:"total"`
	ItemCount            int             `json:"itemCount"`
}

// QuoteMergedEvent records an anonymous quote folded into a customer quote.
type QuoteMergedEvent struct {
	TargetQuoteID uuid.UUID `json:"targetQuoteId"`
	SourceQuoteID uuid.UUID `json:"sourceQuoteId"`
	CustomerID    uuid.UUID `json:"customerId"`
	MergedLines   int       `json:"mergedLines"`
}
