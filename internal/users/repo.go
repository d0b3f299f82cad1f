package users

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes tenant persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID retrieves the user by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByClerkID retrieves the user owning the external auth subject.
func (r *Repository) FindByClerkID(ctx context.Context, clerkUserID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("clerk_user_id = ?", clerkUserID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOrCreate returns the tenant for the identity, inserting it on first
// sight. The insert ignores conflicts so concurrent first requests converge on
// one row without aborting an enclosing transaction. created reports whether
// this call inserted the row.
func (r *Repository) FindOrCreate(ctx context.Context, id Identity) (user *models.User, created bool, err error) {
	existing, err := r.FindByClerkID(ctx, id.ClerkUserID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	candidate := newTenant(id, time.Now().UTC())
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "clerk_user_id"}}, DoNothing: true}).
		Create(candidate)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return candidate, true, nil
	}

	existing, err = r.FindByClerkID(ctx, id.ClerkUserID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// UpdateLogin stamps last_login and refreshes the profile fields that changed.
func (r *Repository) UpdateLogin(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates).Error
}

// IncrementCounters bumps total_releases and total_distributions by one.
func (r *Repository) IncrementCounters(ctx context.Context, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"total_releases":      gorm.Expr("total_releases + 1"),
			"total_distributions": gorm.Expr("total_distributions + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type distributionTotals struct {
	Count      int64
	MediaCount int64
}

func (r *Repository) distributionTotals(ctx context.Context, userID uuid.UUID) (distributionTotals, error) {
	var totals distributionTotals
	err := r.db.WithContext(ctx).
		Model(&models.Distribution{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total_media_count), 0) AS media_count").
		Where("user_id = ?", userID).
		Scan(&totals).Error
	return totals, err
}

func (r *Repository) recentDistributions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Distribution, error) {
	var rows []models.Distribution
	err := r.db.WithContext(ctx).
		Select("id", "press_release_title", "status", "total_media_count", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
