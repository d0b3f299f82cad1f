package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pressreach-backend/pkg/enums"
)

// User is a tenant identified by its external auth subject.
type User struct {
	ID                   uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	ClerkUserID          string         `gorm:"column:clerk_user_id;not null;uniqueIndex"`
	Email                string         `gorm:"column:email;not null"`
	FirstName            string         `gorm:"column:first_name"`
	LastName             string         `gorm:"column:last_name"`
	PlanType             enums.PlanType `gorm:"column:plan_type;type:text;not null"`
	Credits              int            `gorm:"column:credits;not null"`
	MonthlyReleasesLimit int            `gorm:"column:monthly_releases_limit;not null"`
	TotalReleases        int            `gorm:"column:total_releases;not null"`
	TotalDistributions   int            `gorm:"column:total_distributions;not null"`
	LastLogin            *time.Time     `gorm:"column:last_login"`
	CreatedAt            time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.PlanType == "" {
		u.PlanType = enums.PlanTypeFree
	}
	return nil
}
