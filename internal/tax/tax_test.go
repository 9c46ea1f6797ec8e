package tax

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/quotecart-backend/pkg/config"
)

func TestFlatRateRoundsToCents(t *testing.T) {
	calc := NewFlatRate(decimal.RequireFromString("0.0825"))
	got, err := calc.Calculate(context.Background(), Request{Subtotal: decimal.RequireFromString("90")})
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("7.43")), "got %s", got)
}

func TestFlatRateRejectsNegativeSubtotal(t *testing.T) {
	_, err := NewFlatRate(decimal.RequireFromString("0.1")).Calculate(context.Background(), Request{Subtotal: decimal.NewFromInt(-1)})
	require.Error(t, err)
}

func TestNoTax(t *testing.T) {
	got, err := NoTax{}.Calculate(context.Background(), Request{Subtotal: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

type stubCalculationAPI struct {
	params *stripe.TaxCalculationParams
	result *stripe.TaxCalculation
	err    error
}

func (s *stubCalculationAPI) New(params *stripe.TaxCalculationParams) (*stripe.TaxCalculation, error) {
	s.params = params
	return s.result, s.err
}

func TestStripeCalculatorBuildsParams(t *testing.T) {
	api := &stubCalculationAPI{result: &stripe.TaxCalculation{TaxAmountExclusive: 500}}
	calc := &StripeCalculator{api: api, taxCode: "txcd_99999999"}
	productID := uuid.New()

	got, err := calc.Calculate(context.Background(), Request{
		Currency: "USD",
		ShippingAddress: Address{
			Line1: "1 Main St", City: "Austin", State: "TX", PostalCode: "78701", Country: "US",
		},
		Lines: []Line{{
			Reference: productID.String(),
			ProductID: productID,
			Quantity:  3,
			Amount:    decimal.RequireFromString("89.995"),
		}},
	})
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(5)), "got %s", got)

	require.NotNil(t, api.params)
	assert.Equal(t, "usd", *api.params.Currency)
	assert.Equal(t, "TX", *api.params.CustomerDetails.Address.State)
	assert.Nil(t, api.params.CustomerDetails.Address.Line2)
	require.Len(t, api.params.LineItems, 1)
	assert.Equal(t, int64(9000), *api.params.LineItems[0].Amount)
	assert.Equal(t, int64(3), *api.params.LineItems[0].Quantity)
	assert.Equal(t, "txcd_99999999", *api.params.LineItems[0].TaxCode)
}

func TestStripeCalculatorWrapsErrors(t *testing.T) {
	api := &stubCalculationAPI{err: errors.New("card_declined")}
	calc := &StripeCalculator{api: api}
	_, err := calc.Calculate(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe tax calculation")
}

type countingCalculator struct {
	calls int
	err   error
}

func (c *countingCalculator) Calculate(context.Context, Request) (decimal.Decimal, error) {
	c.calls++
	if c.err != nil {
		return decimal.Zero, c.err
	}
	return decimal.NewFromInt(1), nil
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	inner := &countingCalculator{err: errors.New("provider down")}
	breaker := NewBreaker(inner, BreakerSettings{
		Name:         "test",
		MaxRequests:  1,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	}, nil)

	for i := 0; i < 2; i++ {
		_, err := breaker.Calculate(context.Background(), Request{})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, breaker.State())

	_, err := breaker.Calculate(context.Background(), Request{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, inner.calls)
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	inner := &countingCalculator{}
	breaker := NewBreaker(inner, BreakerSettings{Name: "ok", MinRequests: 1, FailureRatio: 0.5}, nil)
	got, err := breaker.Calculate(context.Background(), Request{})
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, gobreaker.StateClosed, breaker.State())
}

func TestNewSelectsProvider(t *testing.T) {
	calc, err := New(context.Background(), config.TaxConfig{Provider: "flat", FlatRate: "0.1", BreakerMinRequests: 5, BreakerFailureRatio: 0.5}, config.StripeConfig{}, nil)
	require.NoError(t, err)
	got, err := calc.Calculate(context.Background(), Request{Subtotal: decimal.NewFromInt(50)})
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(5)), "got %s", got)

	_, err = New(context.Background(), config.TaxConfig{Provider: "stripe"}, config.StripeConfig{}, nil)
	require.Error(t, err, "stripe provider without api key should fail")

	_, err = New(context.Background(), config.TaxConfig{Provider: "avalara"}, config.StripeConfig{}, nil)
	require.Error(t, err)
}
