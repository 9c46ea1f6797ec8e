package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/angelmondragon/quotecart-backend/api/responses"
	pkgAuth "github.com/angelmondragon/quotecart-backend/pkg/auth"
	"github.com/angelmondragon/quotecart-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
)

// OptionalAuth seeds the request context with the customer from a bearer
// token. Requests without credentials continue as guests; a token that is
// present but invalid is rejected.
func OptionalAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, pkgAuth.ErrTokenExpired) {
					msg = "token expired"
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msg))
				return
			}

			ctx := WithCustomerID(r.Context(), claims.CustomerID)
			if logg != nil {
				ctx = logg.WithCustomerID(ctx, claims.CustomerID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
