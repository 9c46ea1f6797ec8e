package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
)

type paymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripePaymentIntents struct{}

func (stripePaymentIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.New(params)
}

// StripeGateway confirms a PaymentIntent server-side with the nonce as the
// payment method. The order id is the idempotency key.
type StripeGateway struct {
	intents  paymentIntentAPI
	currency string
	logg     *logger.Logger
}

func NewStripeGateway(currency string, logg *logger.Logger) *StripeGateway {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{intents: stripePaymentIntents{}, currency: currency, logg: logg}
}

func (g *StripeGateway) CreatePaymentTransaction(ctx context.Context, order *models.Order, nonce Nonce) (*Result, error) {
	if order == nil {
		return nil, errors.New("order required")
	}
	if !nonce.Present() {
		return &Result{Success: false, Message: "payment nonce required"}, nil
	}

	amount := order.Total.Shift(2).Round(0).IntPart()
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(g.currency),
		PaymentMethod: stripe.String(strings.TrimSpace(nonce.Value)),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(fmt.Sprintf("Order %s", order.ID)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	if order.Email != "" {
		params.ReceiptEmail = stripe.String(order.Email)
	}
	params.Context = ctx
	params.SetIdempotencyKey("order-" + order.ID.String())
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("quote_id", order.QuoteID.String())
	params.AddMetadata("nonce_descriptor", strings.TrimSpace(nonce.Descriptor))

	intent, err := g.intents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			if g.logg != nil {
				g.logg.Warn(g.logg.WithField(ctx, "decline_code", string(stripeErr.DeclineCode)), "card declined")
			}
			return &Result{Success: false, Message: stripeErr.Msg}, nil
		}
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded && intent.Status != stripe.PaymentIntentStatusProcessing {
		return &Result{Success: false, TransactionID: intent.ID, Message: string(intent.Status)}, nil
	}
	return &Result{Success: true, TransactionID: intent.ID}, nil
}
