package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/quotecart-backend/api/responses"
	"github.com/angelmondragon/quotecart-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is anything the readiness probe can check.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuoteCart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and reports 503 when any is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuoteCart-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				status[name] = "down"
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "readiness check failed", err)
				}
				continue
			}
			status[name] = "ok"
		}

		for name, state := range status {
			if state != "ok" {
				responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, name+" unavailable"))
				return
			}
		}

		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
