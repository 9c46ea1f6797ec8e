package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/quotecart-backend/pkg/logger"
	"github.com/angelmondragon/quotecart-backend/pkg/metrics"
)

const defaultInterval = time.Hour

// ServiceParams configure the maintenance loop.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.MaintenanceMetrics
	Interval time.Duration
}

// Service runs registered jobs on a fixed cadence.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.MaintenanceMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run executes a cycle immediately and then every interval until ctx ends.
// A failed cycle is logged and does not stop the loop.
func (s *Service) Run(ctx context.Context) error {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.logg.Error(ctx, "maintenance cycle failed", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			timer.Reset(s.interval)
		}
	}
}

// RunOnce performs a single locked cycle. It backs the worker's -once mode.
func (s *Service) RunOnce(ctx context.Context) error {
	return s.runCycle(ctx)
}

// runCycle runs every job even when earlier ones fail and returns the
// combined failures.
func (s *Service) runCycle(ctx context.Context) (err error) {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.logg.Debug(ctx, "maintenance lock held elsewhere, skipping cycle")
		return nil
	}
	defer func() {
		err = multierr.Append(err, s.lock.Release(ctx))
	}()

	for _, job := range s.registry.Jobs() {
		err = multierr.Append(err, s.runJob(ctx, job))
	}
	return err
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	start := time.Now()
	removed, err := job.Run(jobCtx)
	duration := time.Since(start)
	jobCtx = s.logg.WithFields(jobCtx, map[string]any{
		"duration_ms":  duration.Milliseconds(),
		"rows_removed": removed,
	})
	if err != nil {
		s.metrics.ObserveRun(job.Name(), metrics.JobResultFailure, duration)
		s.logg.Error(jobCtx, "maintenance job failed", err)
		return fmt.Errorf("%s: %w", job.Name(), err)
	}
	s.metrics.ObserveRun(job.Name(), metrics.JobResultSuccess, duration)
	s.metrics.AddRemoved(job.Name(), removed)
	s.logg.Info(jobCtx, "maintenance job completed")
	return nil
}
