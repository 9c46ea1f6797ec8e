package tax

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"

	"github.com/angelmondragon/quotecart-backend/pkg/logger"
)

type BreakerSettings struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// Breaker stops calling a failing provider for Timeout once the failure ratio
// over at least MinRequests calls is reached. While open it fails fast with
// gobreaker.ErrOpenState.
type Breaker struct {
	next Calculator
	cb   *gobreaker.CircuitBreaker[decimal.Decimal]
}

func NewBreaker(next Calculator, settings BreakerSettings, logg *logger.Logger) *Breaker {
	minRequests := settings.MinRequests
	ratio := settings.FailureRatio
	st := gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests || counts.Requests == 0 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logg == nil {
				return
			}
			ctx := logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			logg.Warn(ctx, "tax provider circuit breaker state changed")
		},
	}
	return &Breaker{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[decimal.Decimal](st),
	}
}

func (b *Breaker) Calculate(ctx context.Context, req Request) (decimal.Decimal, error) {
	return b.cb.Execute(func() (decimal.Decimal, error) {
		return b.next.Calculate(ctx, req)
	})
}

// State reports the breaker state, mainly for health output.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
