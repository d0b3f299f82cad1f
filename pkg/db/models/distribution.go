package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pressreach-backend/pkg/enums"
)

// Distribution is one press-release dispatch job owned by a user.
type Distribution struct {
	ID                  uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	UserID              uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	PressReleaseTitle   string                   `gorm:"column:press_release_title;not null"`
	PressReleaseContent string                   `gorm:"column:press_release_content;not null"`
	PressReleaseData    string                   `gorm:"column:press_release_data;type:text;not null"`
	CompanyName         string                   `gorm:"column:company_name"`
	ContactEmail        string                   `gorm:"column:contact_email"`
	ContactPhone        string                   `gorm:"column:contact_phone"`
	ScheduledAt         *time.Time               `gorm:"column:scheduled_at"`
	SentAt              *time.Time               `gorm:"column:sent_at"`
	Status              enums.DistributionStatus `gorm:"column:status;type:text;not null"`
	TotalMediaCount     int                      `gorm:"column:total_media_count;not null"`
	SentCount           int                      `gorm:"column:sent_count;not null"`
	FailedCount         int                      `gorm:"column:failed_count;not null"`
	TotalPrice          decimal.Decimal          `gorm:"column:total_price;type:numeric(12,2);not null"`
	MediaOutlets        []MediaOutlet            `gorm:"many2many:distribution_media"`
	Files               []DistributionFile       `gorm:"foreignKey:DistributionID;constraint:OnDelete:CASCADE"`
	DeliveryLogs        []DeliveryLog            `gorm:"foreignKey:DistributionID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *Distribution) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
