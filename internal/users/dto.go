package users

import (
	"time"

	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/angelmondragon/pressreach-backend/pkg/enums"
	"github.com/google/uuid"
)

// SyncResult is returned by the user sync endpoint.
type SyncResult struct {
	ID          uuid.UUID      `json:"id"`
	ClerkUserID string         `json:"clerk_user_id"`
	Email       string         `json:"email"`
	PlanType    enums.PlanType `json:"plan_type"`
	Credits     int            `json:"credits"`
	Status      string         `json:"status"`
}

// RecentRelease summarises one distribution on the dashboard.
type RecentRelease struct {
	ID         uuid.UUID                `json:"id"`
	Title      string                   `json:"title"`
	CreatedAt  time.Time                `json:"created_at"`
	Status     enums.DistributionStatus `json:"status"`
	MediaCount int                      `json:"media_count"`
}

// Stats is the dashboard summary for one tenant.
type Stats struct {
	UserID             uuid.UUID       `json:"user_id"`
	Email              string          `json:"email"`
	FirstName          string          `json:"first_name"`
	LastName           string          `json:"last_name"`
	PlanName           string          `json:"plan_name"`
	PlanLimit          int             `json:"plan_limit"`
	TotalReleases      int             `json:"total_releases"`
	TotalDistributions int64           `json:"total_distributions"`
	TotalCredits       int             `json:"total_credits"`
	UsedCredits        int             `json:"used_credits"`
	RemainingCredits   int             `json:"remaining_credits"`
	MediaCount         int64           `json:"media_count"`
	RecentReleases     []RecentRelease `json:"recent_releases"`
}

func syncResultFrom(u *models.User) *SyncResult {
	return &SyncResult{
		ID:          u.ID,
		ClerkUserID: u.ClerkUserID,
		Email:       u.Email,
		PlanType:    u.PlanType,
		Credits:     u.Credits,
		Status:      "synced",
	}
}
