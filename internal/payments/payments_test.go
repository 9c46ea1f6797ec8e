package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
)

type recordingGateway struct {
	calls int
}

func (r *recordingGateway) CreatePaymentTransaction(context.Context, *models.Order, Nonce) (*Result, error) {
	r.calls++
	return &Result{Success: true, TransactionID: "txn_1"}, nil
}

func TestFreeOrdersSkipProvider(t *testing.T) {
	next := &recordingGateway{}
	gateway := WithFreeOrders(next)

	res, err := gateway.CreatePaymentTransaction(context.Background(), &models.Order{Total: decimal.Zero}, Nonce{})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.TransactionID)
	assert.Equal(t, 0, next.calls)

	res, err = gateway.CreatePaymentTransaction(context.Background(), &models.Order{Total: decimal.NewFromInt(5)}, Nonce{Value: "pm", Descriptor: "card"})
	require.NoError(t, err)
	assert.Equal(t, "txn_1", res.TransactionID)
	assert.Equal(t, 1, next.calls)
}

func TestFreeOrdersWithoutProviderDeclinesPaidOrders(t *testing.T) {
	res, err := WithFreeOrders(nil).CreatePaymentTransaction(context.Background(), &models.Order{Total: decimal.NewFromInt(1)}, Nonce{})
	require.NoError(t, err)
	assert.False(t, res.Success)
}

type stubIntents struct {
	params *stripe.PaymentIntentParams
	intent *stripe.PaymentIntent
	err    error
}

func (s *stubIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	s.params = params
	return s.intent, s.err
}

func newOrder() *models.Order {
	return &models.Order{
		ID:      uuid.New(),
		QuoteID: uuid.New(),
		Email:   "buyer@example.com",
		Total:   decimal.RequireFromString("95.00"),
	}
}

func TestStripeGatewaySucceeded(t *testing.T) {
	intents := &stubIntents{intent: &stripe.PaymentIntent{ID: "pi_123", Status: stripe.PaymentIntentStatusSucceeded}}
	gateway := &StripeGateway{intents: intents, currency: "usd"}
	order := newOrder()

	res, err := gateway.CreatePaymentTransaction(context.Background(), order, Nonce{Value: "pm_card_visa", Descriptor: "card"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "pi_123", res.TransactionID)

	require.NotNil(t, intents.params)
	assert.Equal(t, int64(9500), *intents.params.Amount)
	assert.Equal(t, "pm_card_visa", *intents.params.PaymentMethod)
	assert.True(t, *intents.params.Confirm)
	assert.Equal(t, order.ID.String(), intents.params.Metadata["order_id"])
	assert.Equal(t, "card", intents.params.Metadata["nonce_descriptor"])
}

func TestStripeGatewayRequiresNonce(t *testing.T) {
	intents := &stubIntents{}
	gateway := &StripeGateway{intents: intents, currency: "usd"}
	res, err := gateway.CreatePaymentTransaction(context.Background(), newOrder(), Nonce{Value: "pm"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, intents.params)
}

func TestStripeGatewayCardDeclineIsNotAnError(t *testing.T) {
	intents := &stubIntents{err: &stripe.Error{Type: stripe.ErrorTypeCard, Msg: "Your card was declined."}}
	gateway := &StripeGateway{intents: intents, currency: "usd"}
	res, err := gateway.CreatePaymentTransaction(context.Background(), newOrder(), Nonce{Value: "pm", Descriptor: "card"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Your card was declined.", res.Message)
}

func TestStripeGatewayTransportError(t *testing.T) {
	intents := &stubIntents{err: errors.New("connection reset")}
	gateway := &StripeGateway{intents: intents, currency: "usd"}
	_, err := gateway.CreatePaymentTransaction(context.Background(), newOrder(), Nonce{Value: "pm", Descriptor: "card"})
	require.Error(t, err)
}

func TestStripeGatewayRequiresActionIsDeclined(t *testing.T) {
	intents := &stubIntents{intent: &stripe.PaymentIntent{ID: "pi_9", Status: stripe.PaymentIntentStatusRequiresAction}}
	gateway := &StripeGateway{intents: intents, currency: "usd"}
	res, err := gateway.CreatePaymentTransaction(context.Background(), newOrder(), Nonce{Value: "pm", Descriptor: "card"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "pi_9", res.TransactionID)
}
