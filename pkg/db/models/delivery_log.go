package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/pressreach-backend/pkg/enums"
)

// DeliveryLog records the single send attempt for a (distribution, outlet) pair.
type DeliveryLog struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	DistributionID uuid.UUID            `gorm:"column:distribution_id;type:uuid;not null;uniqueIndex:idx_delivery_logs_distribution_outlet"`
	MediaOutletID  uuid.UUID            `gorm:"column:media_outlet_id;type:uuid;not null;uniqueIndex:idx_delivery_logs_distribution_outlet"`
	ContactType    enums.ContactType    `gorm:"column:contact_type;type:text;not null"`
	ContactValue   string               `gorm:"column:contact_value"`
	Status         enums.DeliveryStatus `gorm:"column:status;type:text;not null"`
	SentAt         *time.Time           `gorm:"column:sent_at"`
	DeliveredAt    *time.Time           `gorm:"column:delivered_at"`
	ErrorMessage   *string              `gorm:"column:error_message"`
	ResponseData   datatypes.JSON       `gorm:"column:response_data"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (l *DeliveryLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
