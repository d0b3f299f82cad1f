// Package cron runs periodic maintenance jobs for the distribution backend.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/pressreach-backend/pkg/logger"
	"github.com/angelmondragon/pressreach-backend/pkg/metrics"
	"go.uber.org/multierr"
)

const defaultInterval = 24 * time.Hour

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service runs every registered job once per interval while holding the lock.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
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

// Run executes a cycle immediately and then on every tick until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	if err := s.RunOnce(ctx); err != nil {
		s.logg.Error(ctx, "cron.cycle.failed", err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron.stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logg.Error(ctx, "cron.cycle.failed", err)
			}
		}
	}
}

// RunOnce runs every job a single time. A failing job does not stop the
// others; all job errors are combined in the result. Losing the lock race
// is not an error.
func (s *Service) RunOnce(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.logg.Info(ctx, "cron.cycle.skipped_locked")
		s.metrics.IncSkipped()
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			s.logg.Error(ctx, "cron.lock.release_failed", relErr)
		}
	}()

	s.logg.Info(ctx, "cron.cycle.start")
	var errs error
	for _, job := range s.registry.Jobs() {
		if err := s.runJob(ctx, job); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", job.Name(), err))
		}
	}
	s.logg.Info(s.logg.WithField(ctx, "failed_jobs", len(multierr.Errors(errs))), "cron.cycle.complete")
	return errs
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	s.logg.Info(jobCtx, "cron.job.start")
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.metrics.ObserveDuration(job.Name(), duration)

	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "cron.job.failed", err)
		s.metrics.IncFailure(job.Name())
		return err
	}
	s.logg.Info(jobCtx, "cron.job.complete")
	s.metrics.IncSuccess(job.Name(), time.Now())
	return nil
}
