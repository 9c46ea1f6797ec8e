package payments

import (
	"context"
	"strings"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
)

// Nonce is the client-side tokenized payment method. Value is the token and
// Descriptor names the payment method type it came from.
type Nonce struct {
	Value      string
	Descriptor string
}

// Present reports whether both nonce fields carry a value.
func (n Nonce) Present() bool {
	return strings.TrimSpace(n.Value) != "" && strings.TrimSpace(n.Descriptor) != ""
}

type Result struct {
	Success       bool
	TransactionID string
	Message       string
}

// Gateway charges an order. A nil error with Success=false is a declined
// payment; a non-nil error is a transport or provider failure.
type Gateway interface {
	CreatePaymentTransaction(ctx context.Context, order *models.Order, nonce Nonce) (*Result, error)
}

// freeOrders settles zero-total orders without contacting the provider.
type freeOrders struct {
	next Gateway
}

// WithFreeOrders wraps next so orders totalling zero succeed without a charge.
func WithFreeOrders(next Gateway) Gateway {
	return &freeOrders{next: next}
}

func (g *freeOrders) CreatePaymentTransaction(ctx context.Context, order *models.Order, nonce Nonce) (*Result, error) {
	if order != nil && order.Total.IsZero() {
		return &Result{Success: true}, nil
	}
	if g.next == nil {
		return &Result{Success: false, Message: "no payment provider configured"}, nil
	}
	return g.next.CreatePaymentTransaction(ctx, order, nonce)
}
