package branding

import (
	"context"

	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists branding profiles.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByUserID returns gorm.ErrRecordNotFound when the tenant has no profile.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.BrandingProfile, error) {
	var profile models.BrandingProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateIfAbsent inserts profile unless the tenant already has one, then
// returns the stored row.
func (r *Repository) CreateIfAbsent(ctx context.Context, profile *models.BrandingProfile) (*models.BrandingProfile, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(profile)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return profile, nil
	}
	return r.FindByUserID(ctx, profile.UserID)
}

// Update applies column updates to the profile row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.BrandingProfile{}).
		Where("id = ?", id).
		Updates(updates).Error
}
