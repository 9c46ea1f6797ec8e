package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/quotecart-backend/api/controllers"
	"github.com/angelmondragon/quotecart-backend/api/routes"
	"github.com/angelmondragon/quotecart-backend/internal/addresses"
	"github.com/angelmondragon/quotecart-backend/internal/catalog"
	"github.com/angelmondragon/quotecart-backend/internal/customers"
	"github.com/angelmondragon/quotecart-backend/internal/orders"
	"github.com/angelmondragon/quotecart-backend/internal/payments"
	"github.com/angelmondragon/quotecart-backend/internal/quotes"
	"github.com/angelmondragon/quotecart-backend/internal/tax"
	"github.com/angelmondragon/quotecart-backend/pkg/bootstrap"
	"github.com/angelmondragon/quotecart-backend/pkg/metrics"
	"github.com/angelmondragon/quotecart-backend/pkg/outbox"
	"github.com/angelmondragon/quotecart-backend/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	rt, logg, err := bootstrap.Start(context.Background(), "api")
	if err != nil {
		bootstrap.Fatal(context.Background(), logg, "failed to start api", err)
	}
	cfg := rt.Config
	dbClient, redisClient := rt.DB, rt.Redis

	currency, paymentMode := cfg.Stripe.Currency, "free-orders-only"
	gateway := payments.WithFreeOrders(nil)
	if cfg.Stripe.Enabled() {
		stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
		if err != nil {
			bootstrap.Fatal(context.Background(), logg, "failed to bootstrap stripe", err)
		}
		currency, paymentMode = stripeClient.Currency(), stripeClient.Mode()
		gateway = payments.NewStripeGateway(currency, logg)
	} else {
		logg.Warn(context.Background(), "stripe api key not configured, only zero-total orders can be placed")
	}

	taxCalculator, err := tax.New(context.Background(), cfg.Tax, cfg.Stripe, logg)
	if err != nil {
		bootstrap.Fatal(context.Background(), logg, "failed to configure tax provider", err)
	}

	quoteMetrics := metrics.NewQuoteMetrics(rt.Registry)

	conn := dbClient.DB()
	quoteRepo := quotes.NewRepository(conn)
	addressRepo := addresses.NewRepository(conn)
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)

	quoteService, err := quotes.NewService(quotes.ServiceParams{
		Repo:      quoteRepo,
		Tx:        dbClient,
		Catalog:   catalog.NewRepository(conn),
		Addresses: addressRepo,
		Tax:       taxCalculator,
		Outbox:    emitter,
		Metrics:   quoteMetrics,
		Logger:    logg,
		Currency:  currency,
	})
	if err != nil {
		bootstrap.Fatal(context.Background(), logg, "failed to create quote service", err)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:      orders.NewRepository(conn),
		Quotes:    quoteRepo,
		Validator: quoteService,
		Customers: customers.NewRepository(conn),
		Addresses: addressRepo,
		Tx:        dbClient,
		Gateway:   gateway,
		Locks:     redisClient,
		LockTTL:   cfg.Cart.CheckoutLockTTL,
		Outbox:    emitter,
		Metrics:   quoteMetrics,
		Logger:    logg,
	})
	if err != nil {
		bootstrap.Fatal(context.Background(), logg, "failed to create order service", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := rt.SignalContext()
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"addr": addr, "payment_mode": paymentMode})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			map[string]controllers.Pinger{"db": dbClient, "redis": redisClient},
			quoteService,
			orderService,
			rt.MetricsHandler(),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(ctx, "api server shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	closeErr := multierr.Combine(server.Shutdown(shutdownCtx), rt.Close())
	if closeErr != nil {
		logg.Error(ctx, "error during shutdown", closeErr)
		exitCode = 1
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
