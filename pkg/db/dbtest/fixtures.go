package dbtest

import (
	"testing"

	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/angelmondragon/pressreach-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OutletOption tweaks a seeded outlet before insert.
type OutletOption func(*models.MediaOutlet)

// WithPrice sets base price and priority multiplier.
func WithPrice(base, multiplier string) OutletOption {
	return func(o *models.MediaOutlet) {
		o.BasePrice = decimal.RequireFromString(base)
		o.PriorityMultiplier = decimal.RequireFromString(multiplier)
	}
}

// Premium marks the outlet premium.
func Premium() OutletOption {
	return func(o *models.MediaOutlet) { o.IsPremium = true }
}

// Outlet inserts an active online outlet priced 1000 × 1.0.
func Outlet(t *testing.T, db *gorm.DB, name, email string, opts ...OutletOption) *models.MediaOutlet {
	t.Helper()
	o := &models.MediaOutlet{
		Name:               name,
		MediaType:          enums.MediaTypeOnline,
		Email:              email,
		BasePrice:          decimal.NewFromInt(1000),
		PriorityMultiplier: decimal.NewFromInt(1),
		Rating:             decimal.Zero,
		IsActive:           true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := db.Create(o).Error; err != nil {
		t.Fatalf("seed outlet: %v", err)
	}
	return o
}

// Tenant inserts a user with the given external subject and email.
func Tenant(t *testing.T, db *gorm.DB, clerkUserID, email string) *models.User {
	t.Helper()
	u := &models.User{ClerkUserID: clerkUserID, Email: email, Credits: 100, MonthlyReleasesLimit: 3}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return u
}
