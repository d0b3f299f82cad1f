package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pressreach-backend/pkg/enums"
)

var premiumMultiplier = decimal.RequireFromString("1.5")

// MediaOutlet is a publication that can receive distributions.
type MediaOutlet struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name               string          `gorm:"column:name;not null"`
	MediaType          enums.MediaType `gorm:"column:media_type;type:text;not null"`
	Description        string          `gorm:"column:description"`
	Website            string          `gorm:"column:website"`
	Email              string          `gorm:"column:email"`
	Telegram           string          `gorm:"column:telegram"`
	Phone              string          `gorm:"column:phone"`
	WhatsApp           string          `gorm:"column:whatsapp"`
	AudienceSize       int             `gorm:"column:audience_size;not null"`
	MonthlyReach       int             `gorm:"column:monthly_reach;not null"`
	BasePrice          decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null"`
	PriorityMultiplier decimal.Decimal `gorm:"column:priority_multiplier;type:numeric(6,2);not null"`
	IsPremium          bool            `gorm:"column:is_premium;not null"`
	IsActive           bool            `gorm:"column:is_active;not null"`
	Rating             decimal.Decimal `gorm:"column:rating;type:numeric(3,2);not null"`
	AddedByUserID      *uuid.UUID      `gorm:"column:added_by_user_id;type:uuid"`
	AddedByName        string          `gorm:"column:added_by_name"`
	AddedAt            *time.Time      `gorm:"column:added_at"`
	Categories         []Category      `gorm:"many2many:media_categories"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *MediaOutlet) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Price is base_price × priority_multiplier × 1.5 for premium outlets,
// rounded half away from zero to two decimals.
func (m MediaOutlet) Price() decimal.Decimal {
	price := m.BasePrice.Mul(m.PriorityMultiplier)
	if m.IsPremium {
		price = price.Mul(premiumMultiplier)
	}
	return price.Round(2)
}
