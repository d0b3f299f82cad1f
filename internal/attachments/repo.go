package attachments

import (
	"context"

	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists distribution_files rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, file *models.DistributionFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// ListByDistribution returns the files in upload order.
func (r *Repository) ListByDistribution(ctx context.Context, distributionID uuid.UUID) ([]models.DistributionFile, error) {
	var files []models.DistributionFile
	err := r.db.WithContext(ctx).
		Where("distribution_id = ?", distributionID).
		Order("uploaded_at ASC, id ASC").
		Find(&files).Error
	return files, err
}

// Find returns gorm.ErrRecordNotFound unless the file belongs to the distribution.
func (r *Repository) Find(ctx context.Context, distributionID, fileID uuid.UUID) (*models.DistributionFile, error) {
	var file models.DistributionFile
	err := r.db.WithContext(ctx).
		Where("id = ? AND distribution_id = ?", fileID, distributionID).
		First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *Repository) Delete(ctx context.Context, fileID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", fileID).Delete(&models.DistributionFile{}).Error
}

// DistributionIDs lists every distribution id known to the database among ids.
func (r *Repository) DistributionIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	found := make(map[uuid.UUID]struct{}, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var rows []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.Distribution{}).Where("id IN ?", ids).Pluck("id", &rows).Error; err != nil {
		return nil, err
	}
	for _, id := range rows {
		found[id] = struct{}{}
	}
	return found, nil
}
