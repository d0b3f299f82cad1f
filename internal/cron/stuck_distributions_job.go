package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const (
	defaultStuckGrace = time.Hour
	stuckBatchSize    = 100

	// UnrecordedDeliveryMessage is stored on outlets whose send was
	// interrupted before its outcome was written.
	UnrecordedDeliveryMessage = "Отправка прервана, результат не записан"
)

type stuckDistributions interface {
	StaleProcessing(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
	FailUnrecorded(ctx context.Context, distributionID uuid.UUID, reason string) (*models.Distribution, error)
}

type StuckDistributionsJobParams struct {
	Logger        *logger.Logger
	Distributions stuckDistributions
	Grace         time.Duration
}

// NewStuckDistributionsJob finalises distributions left in processing by an
// aborted send. Outlets without a delivery log are recorded as failed.
func NewStuckDistributionsJob(params StuckDistributionsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Distributions == nil {
		return nil, fmt.Errorf("distribution repository required")
	}
	grace := params.Grace
	if grace <= 0 {
		grace = defaultStuckGrace
	}
	return &stuckDistributionsJob{
		logg:  params.Logger,
		dists: params.Distributions,
		grace: grace,
		now:   time.Now,
	}, nil
}

type stuckDistributionsJob struct {
	logg  *logger.Logger
	dists stuckDistributions
	grace time.Duration
	now   func() time.Time
}

func (j *stuckDistributionsJob) Name() string { return "stuck-distribution-recovery" }

func (j *stuckDistributionsJob) Run(ctx context.Context) error {
	ids, err := j.dists.StaleProcessing(ctx, j.now().Add(-j.grace), stuckBatchSize)
	if err != nil {
		return fmt.Errorf("list stuck distributions: %w", err)
	}

	var (
		recovered int
		errs      error
	)
	for _, id := range ids {
		d, err := j.dists.FailUnrecorded(ctx, id, UnrecordedDeliveryMessage)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("recover %s: %w", id, err))
			continue
		}
		recovered++
		j.logg.Info(j.logg.WithFields(j.logg.WithDistributionID(ctx, id.String()), map[string]any{
			"status":       d.Status.String(),
			"sent_count":   d.SentCount,
			"failed_count": d.FailedCount,
		}), "cron.stuck_distributions.recovered")
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(ids),
		"recovered":  recovered,
		"grace":      j.grace.String(),
	})
	j.logg.Info(logCtx, "cron.stuck_distributions.complete")
	return errs
}
