package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/angelmondragon/quotecart-backend/pkg/config"
	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
	"github.com/angelmondragon/quotecart-backend/pkg/metrics"
	"github.com/angelmondragon/quotecart-backend/pkg/outbox"
)

const (
	defaultBatchSize      = 50
	defaultPollInterval   = 500 * time.Millisecond
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond

	dispatchPublished = "published"
	dispatchFailed    = "failed"
)

type pinger interface {
	Ping(context.Context) error
}

type outboxRepository interface {
	FetchUnpublished(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, err error) error
}

type streamPublisher interface {
	pinger
	EventStreamKey(eventType string) string
	AppendToStream(ctx context.Context, stream string, values map[string]any, maxLen int64) (string, error)
}

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         pinger
	Streams    streamPublisher
	Repository outboxRepository
	Metrics    *metrics.QuoteMetrics
}

// Service relays committed outbox rows to one redis stream per event type.
type Service struct {
	logg         *logger.Logger
	db           pinger
	streams      streamPublisher
	repo         outboxRepository
	metrics      *metrics.QuoteMetrics
	batchSize    int
	maxAttempts  int
	streamMaxLen int64
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Config == nil:
		return nil, errors.New("config is required")
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.Streams == nil:
		return nil, errors.New("redis client is required")
	case params.Repository == nil:
		return nil, errors.New("outbox repository is required")
	}

	cfg := params.Config.Outbox
	s := &Service{
		logg:         params.Logger,
		db:           params.DB,
		streams:      params.Streams,
		repo:         params.Repository,
		metrics:      params.Metrics,
		batchSize:    cfg.BatchSize,
		maxAttempts:  cfg.MaxAttempts,
		streamMaxLen: cfg.StreamMaxLen,
		pollInterval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
	}
	if s.batchSize <= 0 {
		s.batchSize = defaultBatchSize
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxAttempts
	}
	if s.pollInterval <= 0 {
		s.pollInterval = defaultPollInterval
	}
	return s, nil
}

// Run polls until ctx ends. Full batches are drained back to back, idle polls
// wait one jittered interval and batch errors back off exponentially.
func (s *Service) Run(ctx context.Context) error {
	for name, dep := range map[string]pinger{"database": s.db, "redis": s.streams} {
		if err := dep.Ping(ctx); err != nil {
			s.logg.Error(ctx, name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", name, err)
		}
	}

	idle := retry.WithJitter(jitterWindow, retry.NewConstant(s.pollInterval))
	backoff := s.errorBackoff()
	for {
		if err := ctx.Err(); err != nil {
			s.logg.Info(ctx, "outbox publisher context canceled")
			return err
		}

		var wait retry.Backoff = idle
		processed, err := s.processBatch(ctx)
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox publisher batch error", err)
			wait = backoff
		case processed:
			backoff = s.errorBackoff()
			continue
		default:
			backoff = s.errorBackoff()
		}

		d, _ := wait.Next()
		if err := sleep(ctx, d); err != nil {
			return err
		}
	}
}

func (s *Service) errorBackoff() retry.Backoff {
	b := retry.NewExponential(s.pollInterval)
	b = retry.WithCappedDuration(maxBackoff, b)
	return retry.WithJitter(jitterWindow, b)
}

// processBatch relays one batch of pending rows. A failed row is marked and
// left for the next poll; only repository errors abort the batch.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	events, err := s.repo.FetchUnpublished(ctx, s.batchSize, s.maxAttempts)
	if err != nil {
		return false, fmt.Errorf("fetch unpublished: %w", err)
	}
	for _, event := range events {
		if err := s.relay(ctx, event); err != nil {
			return true, err
		}
	}
	return len(events) > 0, nil
}

// relay publishes a single row and records the outcome on it.
func (s *Service) relay(ctx context.Context, event models.OutboxEvent) error {
	envelope, err := outbox.Decode(event.Payload, nil)
	if err == nil {
		err = s.publish(ctx, event, envelope)
	}
	ctx = s.logg.WithFields(ctx, s.eventFields(event, envelope))
	eventType := string(event.EventType)

	if err != nil {
		attempt := event.AttemptCount + 1
		failCtx := s.logg.WithFields(ctx, map[string]any{"attempt_count": attempt, "error": err.Error()})
		if attempt >= s.maxAttempts {
			failCtx = s.logg.WithField(failCtx, "terminal_reason", "max_attempts")
		}
		s.logg.Warn(failCtx, "outbox publish failed")
		s.metrics.IncOutboxDispatch(eventType, dispatchFailed)
		if markErr := s.repo.MarkFailed(ctx, event.ID, err); markErr != nil {
			return fmt.Errorf("mark failure %s: %w", event.ID, markErr)
		}
		return nil
	}

	if err := s.repo.MarkPublished(ctx, event.ID); err != nil {
		return fmt.Errorf("mark published %s: %w", event.ID, err)
	}
	s.metrics.IncOutboxDispatch(eventType, dispatchPublished)
	s.logg.Info(ctx, "outbox event published")
	return nil
}

func (s *Service) publish(ctx context.Context, event models.OutboxEvent, envelope outbox.PayloadEnvelope) error {
	values := map[string]any{
		"event_id":       envelope.EventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
		"payload":        string(event.Payload),
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	_, err := s.streams.AppendToStream(publishCtx, s.streams.EventStreamKey(string(event.EventType)), values, s.streamMaxLen)
	return err
}

func (s *Service) eventFields(event models.OutboxEvent, envelope outbox.PayloadEnvelope) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if envelope.EventID != "" {
		fields["event_id"] = envelope.EventID
		fields["occurred_at"] = envelope.OccurredAt.Format(time.RFC3339Nano)
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
