package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/pressreach-backend/internal/attachments"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const defaultOrphanGrace = 24 * time.Hour

type uploadDirs interface {
	Dirs() ([]attachments.Dir, error)
	RemoveDir(distributionID uuid.UUID) error
}

type distributionLookup interface {
	DistributionIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error)
}

type OrphanUploadsJobParams struct {
	Logger        *logger.Logger
	Store         uploadDirs
	Distributions distributionLookup
	Grace         time.Duration
}

// NewOrphanUploadsJob removes upload directories whose distribution row no
// longer exists. Directories modified within the grace period are kept so an
// upload racing with distribution creation is never touched.
func NewOrphanUploadsJob(params OrphanUploadsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("upload store required")
	}
	if params.Distributions == nil {
		return nil, fmt.Errorf("distribution lookup required")
	}
	grace := params.Grace
	if grace <= 0 {
		grace = defaultOrphanGrace
	}
	return &orphanUploadsJob{
		logg:  params.Logger,
		store: params.Store,
		dists: params.Distributions,
		grace: grace,
		now:   time.Now,
	}, nil
}

type orphanUploadsJob struct {
	logg  *logger.Logger
	store uploadDirs
	dists distributionLookup
	grace time.Duration
	now   func() time.Time
}

func (j *orphanUploadsJob) Name() string { return "orphan-upload-cleanup" }

func (j *orphanUploadsJob) Run(ctx context.Context) error {
	dirs, err := j.store.Dirs()
	if err != nil {
		return fmt.Errorf("list upload dirs: %w", err)
	}

	cutoff := j.now().Add(-j.grace)
	candidates := make([]uuid.UUID, 0, len(dirs))
	for _, d := range dirs {
		if d.ModTime.Before(cutoff) {
			candidates = append(candidates, d.DistributionID)
		}
	}

	live, err := j.dists.DistributionIDs(ctx, candidates)
	if err != nil {
		return fmt.Errorf("lookup distributions: %w", err)
	}

	var (
		removed int
		errs    error
	)
	for _, id := range candidates {
		if _, ok := live[id]; ok {
			continue
		}
		if err := j.store.RemoveDir(id); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("remove %s: %w", id, err))
			continue
		}
		removed++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"dirs_scanned": len(dirs),
		"candidates":   len(candidates),
		"dirs_removed": removed,
		"grace":        j.grace.String(),
	})
	j.logg.Info(logCtx, "cron.orphan_uploads.complete")
	return errs
}
