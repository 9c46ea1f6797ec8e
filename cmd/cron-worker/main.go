package main

import (
	"context"
	"errors"
	"flag"

	"github.com/angelmondragon/quotecart-backend/internal/cron"
	"github.com/angelmondragon/quotecart-backend/internal/quotes"
	"github.com/angelmondragon/quotecart-backend/pkg/bootstrap"
	"github.com/angelmondragon/quotecart-backend/pkg/metrics"
	"github.com/angelmondragon/quotecart-backend/pkg/outbox"
)

func main() {
	once := flag.Bool("once", false, "run a single maintenance cycle and exit")
	flag.Parse()

	rt, logg, err := bootstrap.Start(context.Background(), "cron-worker")
	if err != nil {
		bootstrap.Fatal(context.Background(), logg, "failed to start cron worker", err)
	}
	service, err := buildService(rt)
	if err != nil {
		_ = rt.Close()
		bootstrap.Fatal(context.Background(), logg, "failed to create maintenance service", err)
	}

	ctx, stop := rt.SignalContext()
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"interval":     rt.Config.Maintenance.Interval.String(),
		"metrics_addr": rt.Config.App.MetricsAddr,
	})
	logg.Info(ctx, "starting cron worker")

	if *once {
		runErr := service.RunOnce(ctx)
		if closeErr := rt.Close(); closeErr != nil {
			logg.Error(ctx, "error during shutdown", closeErr)
		}
		if runErr != nil {
			bootstrap.Fatal(ctx, logg, "maintenance cycle failed", runErr)
		}
		logg.Info(ctx, "maintenance cycle finished")
		return
	}

	go func() {
		if err := rt.ServeMetrics(ctx, rt.Config.App.MetricsAddr); err != nil {
			logg.Error(ctx, "metrics listener stopped", err)
		}
	}()

	runErr := service.Run(ctx)
	if closeErr := rt.Close(); closeErr != nil {
		logg.Error(ctx, "error during shutdown", closeErr)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		bootstrap.Fatal(ctx, logg, "cron worker stopped unexpectedly", runErr)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildService(rt *bootstrap.Runtime) (*cron.Service, error) {
	cfg := rt.Config.Maintenance
	conn := rt.DB.DB()

	lock, err := cron.NewRedisLock(rt.Redis, rt.Redis.MaintenanceLockKey(), cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	outboxJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     rt.Logger,
		DB:         rt.DB,
		Repository: outbox.NewRepository(conn),
		Retention:  cfg.OutboxRetention,
	})
	if err != nil {
		return nil, err
	}
	quoteJob, err := cron.NewStaleQuoteJob(cron.StaleQuoteJobParams{
		Logger:     rt.Logger,
		DB:         rt.DB,
		Repository: quotes.NewRepository(conn),
		MaxAge:     cfg.StaleQuoteAge,
		BatchSize:  cfg.StaleQuoteBatch,
	})
	if err != nil {
		return nil, err
	}
	registry := cron.NewRegistry()
	if err := registry.Register(outboxJob, quoteJob); err != nil {
		return nil, err
	}
	registry, err = registry.Only(cfg.Jobs...)
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   rt.Logger,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewMaintenanceMetrics(rt.Registry),
		Interval: cfg.Interval,
	})
}
