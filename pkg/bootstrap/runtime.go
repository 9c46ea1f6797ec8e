// Package bootstrap wires the resources shared by every quotecart binary.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/quotecart-backend/pkg/config"
	"github.com/angelmondragon/quotecart-backend/pkg/db"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
	"github.com/angelmondragon/quotecart-backend/pkg/migrate"
	"github.com/angelmondragon/quotecart-backend/pkg/redis"
)

const metricsShutdownTimeout = 5 * time.Second

// Runtime holds the config, logger and connections a binary runs on.
type Runtime struct {
	Service  string
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	Registry *prometheus.Registry
}

// Start loads .env and config, then opens postgres (running dev migrations
// when enabled) and redis. On failure the returned logger is still usable.
func Start(ctx context.Context, service string) (*Runtime, *logger.Logger, error) {
	logg := logger.New(logger.Options{ServiceName: service})
	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, logg, fmt.Errorf("load config: %w", err)
	}
	logg = NewLogger(service, cfg.App)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, logg, fmt.Errorf("bootstrap database: %w", err)
	}
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return nil, logg, multierr.Append(fmt.Errorf("dev migrations: %w", err), dbClient.Close())
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return nil, logg, multierr.Append(fmt.Errorf("bootstrap redis: %w", err), dbClient.Close())
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Runtime{
		Service:  service,
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Registry: registry,
	}, logg, nil
}

// NewLogger builds the service logger from the app config.
func NewLogger(service string, app config.AppConfig) *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: service,
		Level:       logger.ParseLevel(app.LogLevel),
		WarnStack:   app.LogWarnStack,
		Console:     app.ConsoleLogs(),
	})
}

// SignalContext is canceled on SIGINT or SIGTERM and carries the env and
// service log fields.
func (r *Runtime) SignalContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = r.Logger.WithFields(ctx, map[string]any{
		"env":         r.Config.App.Env,
		"serviceKind": r.Service,
	})
	return ctx, stop
}

// MetricsHandler serves the runtime registry.
func (r *Runtime) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{Registry: r.Registry})
}

// ServeMetrics exposes /metrics on addr until ctx is done. It returns
// immediately when addr is empty.
func (r *Runtime) ServeMetrics(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.MetricsHandler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// Close releases redis and the database, reporting every failure.
func (r *Runtime) Close() error {
	var err error
	if r.Redis != nil {
		err = multierr.Append(err, r.Redis.Close())
	}
	if r.DB != nil {
		err = multierr.Append(err, r.DB.Close())
	}
	return err
}

// Fatal logs err and exits the process.
func Fatal(ctx context.Context, logg *logger.Logger, msg string, err error) {
	logg.Error(ctx, msg, err)
	os.Exit(1)
}
