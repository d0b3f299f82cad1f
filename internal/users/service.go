package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const recentReleasesLimit = 5

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindOrCreate(ctx context.Context, id Identity) (*models.User, bool, error)
	UpdateLogin(ctx context.Context, userID uuid.UUID, updates map[string]any) error
	distributionTotals(ctx context.Context, userID uuid.UUID) (distributionTotals, error)
	recentDistributions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Distribution, error)
}

// Service exposes tenant provisioning and dashboard reads.
type Service interface {
	// Ensure returns the tenant for the caller, creating it on first sight.
	Ensure(ctx context.Context, id Identity) (*models.User, error)
	Sync(ctx context.Context, id Identity) (*SyncResult, error)
	Stats(ctx context.Context, userID uuid.UUID) (*Stats, error)
}

type service struct {
	repo usersRepository
	now  func() time.Time
}

// NewService builds the users service.
func NewService(repo usersRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Ensure(ctx context.Context, id Identity) (*models.User, error) {
	if strings.TrimSpace(id.ClerkUserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing subject")
	}
	user, _, err := s.repo.FindOrCreate(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "provision user")
	}
	return user, nil
}

func (s *service) Sync(ctx context.Context, id Identity) (*SyncResult, error) {
	user, err := s.Ensure(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	updates := map[string]any{"last_login": now}
	if id.Email != "" && id.Email != user.Email {
		updates["email"] = id.Email
		user.Email = id.Email
	}
	if id.FirstName != "" && id.FirstName != user.FirstName {
		updates["first_name"] = id.FirstName
		user.FirstName = id.FirstName
	}
	if id.LastName != "" && id.LastName != user.LastName {
		updates["last_name"] = id.LastName
		user.LastName = id.LastName
	}
	if err := s.repo.UpdateLogin(ctx, user.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}
	user.LastLogin = &now

	return syncResultFrom(user), nil
}

func (s *service) Stats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	totals, err := s.repo.distributionTotals(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count distributions")
	}
	recent, err := s.repo.recentDistributions(ctx, userID, recentReleasesLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent distributions")
	}

	plan := user.PlanType.Limits()
	totalReleases := user.TotalReleases
	if totalReleases == 0 {
		totalReleases = int(totals.Count)
	}

	stats := &Stats{
		UserID:             user.ID,
		Email:              user.Email,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		PlanName:           plan.Name,
		PlanLimit:          plan.MonthlyReleasesLimit,
		TotalReleases:      totalReleases,
		TotalDistributions: totals.Count,
		TotalCredits:       plan.Credits,
		UsedCredits:        plan.Credits - user.Credits,
		RemainingCredits:   user.Credits,
		MediaCount:         totals.MediaCount,
		RecentReleases:     make([]RecentRelease, 0, len(recent)),
	}
	for _, d := range recent {
		stats.RecentReleases = append(stats.RecentReleases, RecentRelease{
			ID:         d.ID,
			Title:      d.PressReleaseTitle,
			CreatedAt:  d.CreatedAt,
			Status:     d.Status,
			MediaCount: d.TotalMediaCount,
		})
	}
	return stats, nil
}
