package outlets

import (
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryDTO is the catalog shape of a category.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
}

// OutletDTO is the catalog shape of a media outlet. Contact fields are blank
// when the caller is not allowed to see them.
type OutletDTO struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	MediaType          string          `json:"media_type"`
	Website            string          `json:"website"`
	Description        string          `json:"description"`
	Email              string          `json:"email,omitempty"`
	Telegram           string          `json:"telegram_username,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	WhatsApp           string          `json:"whatsapp,omitempty"`
	AudienceSize       int             `json:"audience_size"`
	MonthlyReach       int             `json:"monthly_reach"`
	BasePrice          decimal.Decimal `json:"base_price"`
	PriorityMultiplier decimal.Decimal `json:"priority_multiplier"`
	Price              decimal.Decimal `json:"price"`
	IsActive           bool            `json:"is_active"`
	IsPremium          bool            `json:"is_premium"`
	Rating             decimal.Decimal `json:"rating"`
	Categories         []CategoryDTO   `json:"categories"`
}

// Input is the create and update payload. Update replaces every field;
// CategoryIDs replaces the links only when present.
type Input struct {
	Name               string          `json:"name" validate:"required,max=255"`
	MediaType          string          `json:"media_type" validate:"required"`
	Email              string          `json:"email" validate:"omitempty,email"`
	Website            string          `json:"website"`
	Description        string          `json:"description"`
	Telegram           string          `json:"telegram_username"`
	Phone              string          `json:"phone"`
	WhatsApp           string          `json:"whatsapp"`
	AudienceSize       int             `json:"audience_size" validate:"min=0"`
	MonthlyReach       int             `json:"monthly_reach" validate:"min=0"`
	BasePrice          decimal.Decimal `json:"base_price"`
	PriorityMultiplier decimal.Decimal `json:"priority_multiplier"`
	IsActive           *bool           `json:"is_active"`
	IsPremium          bool            `json:"is_premium"`
	Rating             decimal.Decimal `json:"rating"`
	CategoryIDs        []uuid.UUID     `json:"category_ids"`
}

// Mutation acknowledges a catalog write.
type Mutation struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Message string    `json:"message"`
}

// PriceLine is one outlet in a price quote.
type PriceLine struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	BasePrice          decimal.Decimal `json:"base_price"`
	PriorityMultiplier decimal.Decimal `json:"priority_multiplier"`
	IsPremium          bool            `json:"is_premium"`
	CalculatedPrice    decimal.Decimal `json:"calculated_price"`
}

// Quote is the price of a prospective distribution.
type Quote struct {
	TotalPrice decimal.Decimal `json:"total_price"`
	MediaCount int             `json:"media_count"`
	Breakdown  []PriceLine     `json:"breakdown"`
}

func categoryFromModel(c models.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description}
}

// FromModel converts an outlet row. withContacts controls whether the
// contact channels are included.
func FromModel(m models.MediaOutlet, withContacts bool) OutletDTO {
	dto := OutletDTO{
		ID:                 m.ID,
		Name:               m.Name,
		MediaType:          m.MediaType.String(),
		Website:            m.Website,
		Description:        m.Description,
		AudienceSize:       m.AudienceSize,
		MonthlyReach:       m.MonthlyReach,
		BasePrice:          m.BasePrice,
		PriorityMultiplier: m.PriorityMultiplier,
		Price:              m.Price(),
		IsActive:           m.IsActive,
		IsPremium:          m.IsPremium,
		Rating:             m.Rating,
		Categories:         make([]CategoryDTO, 0, len(m.Categories)),
	}
	if withContacts {
		dto.Email = m.Email
		dto.Telegram = m.Telegram
		dto.Phone = m.Phone
		dto.WhatsApp = m.WhatsApp
	}
	for _, c := range m.Categories {
		dto.Categories = append(dto.Categories, categoryFromModel(c))
	}
	return dto
}
