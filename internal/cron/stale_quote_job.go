package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/quotecart-backend/pkg/logger"
)

const (
	defaultStaleQuoteAge   = 30 * 24 * time.Hour
	defaultStaleQuoteBatch = 500
)

type staleQuotePurger interface {
	DeleteStaleGuestQuotes(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) (int64, error)
}

type StaleQuoteJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository staleQuotePurger
	MaxAge     time.Duration
	BatchSize  int
}

// NewStaleQuoteJob deletes open guest quotes nobody has touched within
// MaxAge. Customer quotes and closed quotes are kept.
func NewStaleQuoteJob(params StaleQuoteJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultStaleQuoteAge
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultStaleQuoteBatch
	}
	return &staleQuoteJob{
		logg:   params.Logger,
		db:     params.DB,
		repo:   params.Repository,
		maxAge: maxAge,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type staleQuoteJob struct {
	logg   *logger.Logger
	db     txRunner
	repo   staleQuotePurger
	maxAge time.Duration
	batch  int
	now    func() time.Time
}

func (j *staleQuoteJob) Name() string { return "stale-guest-quotes" }

// Run deletes in batches until a batch comes back short.
func (j *staleQuoteJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.maxAge)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		var deleted int64
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			rows, err := j.repo.DeleteStaleGuestQuotes(ctx, tx, cutoff, j.batch)
			deleted = rows
			return err
		})
		if err != nil {
			return total, fmt.Errorf("stale guest quotes: %w", err)
		}
		total += deleted
		if deleted < int64(j.batch) {
			break
		}
	}
	j.logg.Info(j.logg.WithField(ctx, "cutoff", cutoff), "stale guest quote cleanup complete")
	return total, nil
}
