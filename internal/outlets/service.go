// Package outlets serves the media catalog: categories, outlets and pricing.
package outlets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/angelmondragon/pressreach-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const msgMediaNotFound = "Медиа не найдены"

type outletsRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategories(ctx context.Context, ids []uuid.UUID) ([]models.Category, error)
	List(ctx context.Context, f Filter) ([]models.MediaOutlet, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MediaOutlet, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.MediaOutlet, error)
	Create(ctx context.Context, outlet *models.MediaOutlet) error
	Save(ctx context.Context, outlet *models.MediaOutlet, categories []models.Category) error
	CountDistributionLinks(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service exposes catalog reads and writes.
type Service interface {
	Categories(ctx context.Context) ([]CategoryDTO, error)
	List(ctx context.Context, f Filter, withContacts bool) ([]OutletDTO, error)
	Create(ctx context.Context, actor *models.User, in Input) (*Mutation, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Mutation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Quote(ctx context.Context, ids []uuid.UUID) (*Quote, error)
	// Resolve loads every requested outlet once. Any unknown id fails the
	// whole call with NOT_FOUND.
	Resolve(ctx context.Context, ids []uuid.UUID) ([]models.MediaOutlet, error)
}

type service struct {
	repo outletsRepository
	now  func() time.Time
}

// NewService wires the catalog service.
func NewService(repo outletsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("outlets repository required")
	}
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) Categories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, c := range rows {
		out = append(out, categoryFromModel(c))
	}
	return out, nil
}

func (s *service) List(ctx context.Context, f Filter, withContacts bool) ([]OutletDTO, error) {
	rows, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media outlets")
	}
	out := make([]OutletDTO, 0, len(rows))
	for _, m := range rows {
		out = append(out, FromModel(m, withContacts))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, actor *models.User, in Input) (*Mutation, error) {
	outlet := &models.MediaOutlet{}
	if err := apply(outlet, in); err != nil {
		return nil, err
	}
	categories, err := s.categories(ctx, in.CategoryIDs)
	if err != nil {
		return nil, err
	}
	outlet.Categories = categories
	if actor != nil {
		id := actor.ID
		now := s.now()
		outlet.AddedByUserID = &id
		outlet.AddedByName = displayName(actor)
		outlet.AddedAt = &now
	}

	if err := s.repo.Create(ctx, outlet); err != nil {
		return nil, pkgerrors.WrapDB(err, "create media outlet")
	}
	return &Mutation{ID: outlet.ID, Name: outlet.Name, Message: "СМИ успешно создано"}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, in Input) (*Mutation, error) {
	outlet, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(outlet, in); err != nil {
		return nil, err
	}

	var categories []models.Category
	if in.CategoryIDs != nil {
		categories, err = s.categories(ctx, in.CategoryIDs)
		if err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, outlet, categories); err != nil {
		return nil, pkgerrors.WrapDB(err, "update media outlet")
	}
	return &Mutation{ID: outlet.ID, Name: outlet.Name, Message: "СМИ успешно обновлено"}, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	links, err := s.repo.CountDistributionLinks(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count distribution links")
	}
	if links > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "media outlet is used by distributions").
			WithDetails(map[string]int64{"distributions": links})
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "СМИ не найдено")
		}
		return pkgerrors.WrapDB(err, "delete media outlet")
	}
	return nil
}

func (s *service) Quote(ctx context.Context, ids []uuid.UUID) (*Quote, error) {
	rows, err := s.repo.FindByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media outlets")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgMediaNotFound)
	}

	q := &Quote{TotalPrice: decimal.Zero, MediaCount: len(rows), Breakdown: make([]PriceLine, 0, len(rows))}
	for _, m := range rows {
		price := m.Price()
		q.TotalPrice = q.TotalPrice.Add(price)
		q.Breakdown = append(q.Breakdown, PriceLine{
			ID:                 m.ID,
			Name:               m.Name,
			BasePrice:          m.BasePrice,
			PriorityMultiplier: m.PriorityMultiplier,
			IsPremium:          m.IsPremium,
			CalculatedPrice:    price,
		})
	}
	return q, nil
}

func (s *service) Resolve(ctx context.Context, ids []uuid.UUID) ([]models.MediaOutlet, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media_ids is required")
	}
	rows, err := s.repo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media outlets")
	}
	if len(rows) != len(unique) {
		found := make(map[uuid.UUID]struct{}, len(rows))
		for _, m := range rows {
			found[m.ID] = struct{}{}
		}
		missing := make([]string, 0, len(unique)-len(rows))
		for _, id := range unique {
			if _, ok := found[id]; !ok {
				missing = append(missing, id.String())
			}
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgMediaNotFound).
			WithDetails(map[string][]string{"missing_media_ids": missing})
	}
	return rows, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.MediaOutlet, error) {
	outlet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "СМИ не найдено")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media outlet")
	}
	return outlet, nil
}

func (s *service) categories(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	unique := dedupe(ids)
	rows, err := s.repo.FindCategories(ctx, unique)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}
	if len(rows) != len(unique) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category id")
	}
	return rows, nil
}

// apply copies the payload onto the outlet after validating the media type
// and pricing coefficients.
func apply(m *models.MediaOutlet, in Input) error {
	mediaType, err := enums.ParseMediaType(strings.ToLower(strings.TrimSpace(in.MediaType)))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown media_type").
			WithDetails(map[string]string{"media_type": in.MediaType})
	}
	if in.BasePrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "base_price must not be negative")
	}
	multiplier := in.PriorityMultiplier
	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}
	if multiplier.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "priority_multiplier must be positive")
	}

	m.Name = strings.TrimSpace(in.Name)
	m.MediaType = mediaType
	m.Email = strings.TrimSpace(in.Email)
	m.Website = in.Website
	m.Description = in.Description
	m.Telegram = in.Telegram
	m.Phone = in.Phone
	m.WhatsApp = in.WhatsApp
	m.AudienceSize = in.AudienceSize
	m.MonthlyReach = in.MonthlyReach
	m.BasePrice = in.BasePrice
	m.PriorityMultiplier = multiplier
	m.IsPremium = in.IsPremium
	m.IsActive = in.IsActive == nil || *in.IsActive
	m.Rating = in.Rating
	return nil
}

func displayName(u *models.User) string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	return u.Email
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
