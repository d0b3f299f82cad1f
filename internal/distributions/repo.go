package distributions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/pressreach-backend/internal/users"
	"github.com/angelmondragon/pressreach-backend/pkg/db"
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/angelmondragon/pressreach-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
	"github.com/angelmondragon/pressreach-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Repository owns every distribution state transition.
type Repository struct {
	db *gorm.DB
	tx txRunner
}

// NewRepository binds the repository to the database client.
func NewRepository(client *db.Client) *Repository {
	return &Repository{db: client.DB(), tx: client}
}

// Create inserts a pending distribution linked to its outlets and bumps the
// tenant counters in the same transaction. The tenant row is created first
// when it does not exist yet.
func (r *Repository) Create(ctx context.Context, tenant users.Identity, p CreateParams) (*models.Distribution, error) {
	if len(p.Outlets) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one media outlet is required")
	}

	total := decimal.Zero
	for _, o := range p.Outlets {
		total = total.Add(o.Price())
	}

	var created *models.Distribution
	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		usersRepo := users.NewRepository(tx)
		user, _, err := usersRepo.FindOrCreate(ctx, tenant)
		if err != nil {
			return fmt.Errorf("provision user: %w", err)
		}

		d := &models.Distribution{
			UserID:              user.ID,
			PressReleaseTitle:   p.Title,
			PressReleaseContent: p.Content,
			PressReleaseData:    p.Data,
			CompanyName:         p.CompanyName,
			ContactEmail:        p.ContactEmail,
			ContactPhone:        p.ContactPhone,
			ScheduledAt:         p.ScheduledAt,
			Status:              enums.DistributionStatusPending,
			TotalMediaCount:     len(p.Outlets),
			TotalPrice:          total,
			MediaOutlets:        p.Outlets,
		}
		if err := tx.WithContext(ctx).Omit("MediaOutlets.*").Create(d).Error; err != nil {
			return fmt.Errorf("insert distribution: %w", err)
		}
		if err := usersRepo.IncrementCounters(ctx, user.ID); err != nil {
			return fmt.Errorf("increment user counters: %w", err)
		}
		created = d
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create distribution")
	}
	return created, nil
}

// GetForTenant loads the distribution with outlets, files and delivery logs.
// A distribution owned by another tenant is reported as not found.
func (r *Repository) GetForTenant(ctx context.Context, userID, id uuid.UUID) (*models.Distribution, error) {
	var d models.Distribution
	err := r.db.WithContext(ctx).
		Preload("MediaOutlets", func(q *gorm.DB) *gorm.DB { return q.Order("media_outlets.name ASC") }).
		Preload("MediaOutlets.Categories").
		Preload("Files", func(q *gorm.DB) *gorm.DB { return q.Order("uploaded_at ASC") }).
		Preload("DeliveryLogs", func(q *gorm.DB) *gorm.DB { return q.Order("created_at ASC") }).
		Where("id = ? AND user_id = ?", id, userID).
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "distribution not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load distribution")
	}
	return &d, nil
}

// ExistsForTenant reports ownership without loading associations.
func (r *Repository) ExistsForTenant(ctx context.Context, userID, id uuid.UUID) (*models.Distribution, error) {
	var d models.Distribution
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "distribution not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load distribution")
	}
	return &d, nil
}

// ListForTenant returns one page of the tenant's distributions, newest first.
func (r *Repository) ListForTenant(ctx context.Context, userID uuid.UUID, f ListFilter) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(f.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	q := r.db.WithContext(ctx).
		Model(&models.Distribution{}).
		Where("user_id = ?", userID)
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var rows []models.Distribution
	if err := pagination.After(q, cursor, f.Limit).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list distributions")
	}

	items, next := pagination.Page(rows, f.Limit, func(d models.Distribution) pagination.Cursor {
		return pagination.Cursor{CreatedAt: d.CreatedAt, ID: d.ID}
	})
	return &ListResult{Items: items, NextCursor: next}, nil
}

// Start moves a pending distribution to processing. Exactly one concurrent
// caller succeeds; the rest get ALREADY_SENT.
func (r *Repository) Start(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Distribution{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, enums.DistributionStatusPending).
		Updates(map[string]any{"status": enums.DistributionStatusProcessing})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "start distribution")
	}
	if res.RowsAffected == 1 {
		return nil
	}

	if _, err := r.ExistsForTenant(ctx, userID, id); err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeAlreadySent, "distribution already sent")
}

// AppendDeliveryLog records one outcome and bumps the matching counter
// atomically with the insert.
func (r *Repository) AppendDeliveryLog(ctx context.Context, distributionID uuid.UUID, o Outcome) (*models.DeliveryLog, error) {
	var counter string
	switch o.Status {
	case enums.DeliveryStatusSent:
		counter = "sent_count"
	case enums.DeliveryStatusFailed:
		counter = "failed_count"
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cannot record delivery status %q", o.Status))
	}
	if o.ContactType == "" {
		o.ContactType = enums.ContactTypeEmail
	}

	entry := &models.DeliveryLog{
		DistributionID: distributionID,
		MediaOutletID:  o.OutletID,
		ContactType:    o.ContactType,
		ContactValue:   o.ContactValue,
		Status:         o.Status,
		SentAt:         o.SentAt,
	}
	if o.ErrorMessage != "" {
		msg := o.ErrorMessage
		entry.ErrorMessage = &msg
	}
	if len(o.ResponseData) > 0 {
		raw, err := json.Marshal(o.ResponseData)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode response data")
		}
		entry.ResponseData = datatypes.JSON(raw)
	}

	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "delivery already recorded for outlet")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert delivery log")
		}

		res := tx.WithContext(ctx).
			Model(&models.Distribution{}).
			Where("id = ? AND status = ? AND sent_count + failed_count < total_media_count", distributionID, enums.DistributionStatusProcessing).
			UpdateColumn(counter, gorm.Expr(counter+" + 1"))
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increment delivery counter")
		}
		if res.RowsAffected != 1 {
			return pkgerrors.New(pkgerrors.CodeConflict, "distribution is not accepting deliveries")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Finalise moves a processing distribution to its terminal status once every
// outlet has a delivery log. A terminal distribution is returned unchanged.
func (r *Repository) Finalise(ctx context.Context, distributionID uuid.UUID) (*models.Distribution, error) {
	d, err := r.load(ctx, distributionID)
	if err != nil {
		return nil, err
	}
	if d.Status.IsTerminal() {
		return d, nil
	}
	if d.Status != enums.DistributionStatusProcessing {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "distribution has not been started")
	}
	if d.SentCount+d.FailedCount != d.TotalMediaCount {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "deliveries still outstanding").
			WithDetails(map[string]int{"total": d.TotalMediaCount, "sent": d.SentCount, "failed": d.FailedCount})
	}

	status := FinalStatus(d.SentCount, d.FailedCount)
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Distribution{}).
		Where("id = ? AND status = ?", distributionID, enums.DistributionStatusProcessing).
		Updates(map[string]any{"status": status, "sent_at": now})
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "finalise distribution")
	}
	return r.load(ctx, distributionID)
}

func (r *Repository) load(ctx context.Context, id uuid.UUID) (*models.Distribution, error) {
	var d models.Distribution
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "distribution not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load distribution")
	}
	return &d, nil
}

// DistributionIDs returns the subset of ids that still exist, across tenants.
func (r *Repository) DistributionIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	live := make(map[uuid.UUID]struct{}, len(ids))
	if len(ids) == 0 {
		return live, nil
	}
	var found []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.Distribution{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup distributions")
	}
	for _, id := range found {
		live[id] = struct{}{}
	}
	return live, nil
}

// StaleProcessing lists distributions still processing whose last status
// change happened before cutoff, oldest first.
func (r *Repository) StaleProcessing(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Distribution{}).
		Where("status = ? AND updated_at < ?", enums.DistributionStatusProcessing, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stale distributions")
	}
	return ids, nil
}

// FailUnrecorded closes an interrupted send. Every linked outlet that has no
// delivery log gets a failed one carrying reason, then the distribution is
// finalised. A terminal distribution is returned unchanged.
func (r *Repository) FailUnrecorded(ctx context.Context, distributionID uuid.UUID, reason string) (*models.Distribution, error) {
	d, err := r.load(ctx, distributionID)
	if err != nil {
		return nil, err
	}
	if d.Status.IsTerminal() {
		return d, nil
	}
	if d.Status != enums.DistributionStatusProcessing {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "distribution has not been started")
	}

	var linked []uuid.UUID
	if err := r.db.WithContext(ctx).
		Table("distribution_media").
		Where("distribution_id = ?", distributionID).
		Pluck("media_outlet_id", &linked).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load linked outlets")
	}
	var logged []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.DeliveryLog{}).
		Where("distribution_id = ?", distributionID).
		Pluck("media_outlet_id", &logged).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery logs")
	}

	seen := make(map[uuid.UUID]struct{}, len(logged))
	for _, id := range logged {
		seen[id] = struct{}{}
	}
	missing := make([]uuid.UUID, 0, len(linked))
	for _, id := range linked {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		var outlets []models.MediaOutlet
		if err := r.db.WithContext(ctx).Where("id IN ?", missing).Find(&outlets).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load outlets")
		}
		for _, o := range outlets {
			_, err := r.AppendDeliveryLog(ctx, distributionID, Outcome{
				OutletID:     o.ID,
				ContactType:  enums.ContactTypeEmail,
				ContactValue: o.Email,
				Status:       enums.DeliveryStatusFailed,
				ErrorMessage: reason,
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return r.Finalise(ctx, distributionID)
}
