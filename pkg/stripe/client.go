package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/quotecart-backend/pkg/config"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
)

const defaultCurrency = "usd"

var errAPIKeyRequired = errors.New("stripe api key is required")

// keyPrefixes lists the secret key kinds accepted per account mode.
var keyPrefixes = map[string][]string{
	"test": {"sk_test_", "rk_test_"},
	"live": {"sk_live_", "rk_live_"},
}

// Client is the configured Stripe account used for card charges and tax.
// The resource packages (paymentintent, tax/calculation) read the key that
// NewClient installs globally.
type Client struct {
	mode     string
	currency string
}

func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	mode := cfg.Environment()
	prefixes, ok := keyPrefixes[mode]
	if !ok {
		return nil, fmt.Errorf("stripe environment %q must be test or live", mode)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if !hasAnyPrefix(apiKey, prefixes) {
		return nil, fmt.Errorf("stripe %s mode requires a %s key", mode, strings.Join(prefixes, " or "))
	}

	c := &Client{mode: mode, currency: normalizeCurrency(cfg.Currency)}
	stripe.Key = apiKey
	if logg != nil {
		stripe.DefaultLeveledLogger = &leveledLogger{ctx: ctx, logg: logg}
		logg.Info(logg.WithFields(ctx, map[string]any{
			"stripe_mode": c.mode,
			"currency":    c.currency,
		}), "stripe client initialized")
	}
	return c, nil
}

// Mode reports whether the account runs in test or live mode.
func (c *Client) Mode() string {
	if c == nil {
		return ""
	}
	return c.mode
}

// Currency returns the lower-case ISO currency used for charges and tax.
func (c *Client) Currency() string {
	if c == nil {
		return defaultCurrency
	}
	return c.currency
}

func normalizeCurrency(raw string) string {
	currency := strings.ToLower(strings.TrimSpace(raw))
	if currency == "" {
		return defaultCurrency
	}
	return currency
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// leveledLogger routes stripe-go's internal logging into the service logger.
// Request traces are demoted to debug.
type leveledLogger struct {
	ctx  context.Context
	logg *logger.Logger
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.logg.Debug(l.ctx, fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.logg.Debug(l.ctx, fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.logg.Warn(l.ctx, fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.logg.Error(l.ctx, "stripe client error", fmt.Errorf(format, v...))
}
