package main

import (
	"context"
	"errors"

	"github.com/angelmondragon/quotecart-backend/pkg/bootstrap"
	"github.com/angelmondragon/quotecart-backend/pkg/metrics"
	"github.com/angelmondragon/quotecart-backend/pkg/outbox"
)

func main() {
	rt, logg, err := bootstrap.Start(context.Background(), "outbox-publisher")
	if err != nil {
		bootstrap.Fatal(context.Background(), logg, "failed to start outbox publisher", err)
	}

	service, err := NewService(ServiceParams{
		Config:     rt.Config,
		Logger:     logg,
		DB:         rt.DB,
		Streams:    rt.Redis,
		Repository: outbox.NewRepository(rt.DB.DB()),
		Metrics:    metrics.NewQuoteMetrics(rt.Registry),
	})
	if err != nil {
		_ = rt.Close()
		bootstrap.Fatal(context.Background(), logg, "failed to create outbox publisher", err)
	}

	ctx, stop := rt.SignalContext()
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"batch_size":   rt.Config.Outbox.BatchSize,
		"max_attempts": rt.Config.Outbox.MaxAttempts,
	})
	logg.Info(ctx, "starting outbox publisher")

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
		bootstrap.Fatal(ctx, logg, "outbox publisher stopped unexpectedly", runErr)
	}
	logg.Info(ctx, "outbox publisher shutting down gracefully")
}
