package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/quotecart-backend/api/controllers"
	quotecontrollers "github.com/angelmondragon/quotecart-backend/api/controllers/quote"
	"github.com/angelmondragon/quotecart-backend/api/middleware"
	"github.com/angelmondragon/quotecart-backend/internal/orders"
	"github.com/angelmondragon/quotecart-backend/internal/quotes"
	"github.com/angelmondragon/quotecart-backend/pkg/config"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness map[string]controllers.Pinger,
	quoteService quotes.Service,
	orderService orders.Service,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/quote", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Use(middleware.ResolveQuote(cfg.Cart, quoteService, logg))

		r.Get("/", quotecontrollers.Fetch(quoteService, logg))
		r.Patch("/", quotecontrollers.Update(quoteService, cfg.Cart, logg))
		r.Post("/checkout", quotecontrollers.Checkout(orderService, cfg.Cart, logg))
		r.Route("/items", func(r chi.Router) {
			r.Post("/", quotecontrollers.AddItem(quoteService, cfg.Cart, logg))
			r.Patch("/{itemId}", quotecontrollers.UpdateItem(quoteService, logg))
			r.Delete("/{itemId}", quotecontrollers.DeleteItem(quoteService, logg))
		})
	})

	return r
}
