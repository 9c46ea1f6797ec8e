package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/quotecart-backend/api/responses"
	"github.com/angelmondragon/quotecart-backend/internal/quotes"
	"github.com/angelmondragon/quotecart-backend/pkg/config"
	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
)

type quoteResolver interface {
	Resolve(ctx context.Context, caller quotes.Caller, cookie string) (*models.Quote, error)
}

// ResolveQuote picks the open quote for the caller from the cart cookie and
// the authenticated customer, then keeps the cookie pointed at it.
func ResolveQuote(cfg config.CartConfig, resolver quoteResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			cookie := ReadQuoteCookie(r, cfg)

			caller := quotes.Caller{}
			if customerID := CustomerIDFromContext(ctx); customerID != nil {
				caller = quotes.Caller{Authenticated: true, CustomerID: customerID}
			}

			quote, err := resolver.Resolve(ctx, caller, cookie)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			switch {
			case quote != nil:
				ctx = WithQuoteID(ctx, quote.ID)
				if logg != nil {
					ctx = logg.WithQuoteID(ctx, quote.ID.String())
				}
				if cookie != quote.ID.String() {
					WriteQuoteCookie(w, cfg, quote.ID)
				}
			case cookie != "":
				ClearQuoteCookie(w, cfg)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ReadQuoteCookie returns the raw cart cookie value or "".
func ReadQuoteCookie(r *http.Request, cfg config.CartConfig) string {
	c, err := r.Cookie(cfg.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// WriteQuoteCookie points the cart cookie at quoteID.
func WriteQuoteCookie(w http.ResponseWriter, cfg config.CartConfig, quoteID uuid.UUID) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    quoteID.String(),
		Path:     "/",
		Expires:  time.Now().Add(cfg.CookieTTL),
		MaxAge:   int(cfg.CookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearQuoteCookie expires the cart cookie.
func ClearQuoteCookie(w http.ResponseWriter, cfg config.CartConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
