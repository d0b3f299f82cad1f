package outlets

import (
	"context"

	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filter narrows the catalog listing. Nil fields are not applied.
type Filter struct {
	CategoryID *uuid.UUID
	IsPremium  *bool
	IsActive   *bool
}

// Repository persists outlets and their category links.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

// FindCategories returns the categories matching ids; unknown ids are absent.
func (r *Repository) FindCategories(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	var rows []models.Category
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

func (r *Repository) List(ctx context.Context, f Filter) ([]models.MediaOutlet, error) {
	q := r.db.WithContext(ctx).Model(&models.MediaOutlet{}).Preload("Categories")
	if f.IsActive != nil {
		q = q.Where("media_outlets.is_active = ?", *f.IsActive)
	}
	if f.IsPremium != nil {
		q = q.Where("media_outlets.is_premium = ?", *f.IsPremium)
	}
	if f.CategoryID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM media_categories mc WHERE mc.media_outlet_id = media_outlets.id AND mc.category_id = ?)", *f.CategoryID)
	}

	var rows []models.MediaOutlet
	err := q.Order("media_outlets.name ASC, media_outlets.id ASC").Find(&rows).Error
	return rows, err
}

// FindByIDs loads the outlets matching ids; unknown ids are absent.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MediaOutlet, error) {
	var rows []models.MediaOutlet
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Where("id IN ?", ids).
		Order("name ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MediaOutlet, error) {
	var outlet models.MediaOutlet
	if err := r.db.WithContext(ctx).Preload("Categories").First(&outlet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &outlet, nil
}

// Create inserts the outlet and links the given categories.
func (r *Repository) Create(ctx context.Context, outlet *models.MediaOutlet) error {
	return r.db.WithContext(ctx).Omit("Categories.*").Create(outlet).Error
}

// Save writes every column of the outlet. When categories is non-nil the
// category links are replaced.
func (r *Repository) Save(ctx context.Context, outlet *models.MediaOutlet, categories []models.Category) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Omit("Categories").Save(outlet).Error; err != nil {
		return err
	}
	if categories == nil {
		return nil
	}
	if err := tx.Model(outlet).Omit("Categories.*").Association("Categories").Replace(categories); err != nil {
		return err
	}
	outlet.Categories = categories
	return nil
}

// CountDistributionLinks reports how many distributions reference the outlet.
func (r *Repository) CountDistributionLinks(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("distribution_media").
		Where("media_outlet_id = ?", id).
		Count(&n).Error
	return n, err
}

// Delete removes the outlet and its category links.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM media_categories WHERE media_outlet_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.MediaOutlet{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
