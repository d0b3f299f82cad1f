package users

import (
	"strings"
	"time"

	"github.com/angelmondragon/pressreach-backend/pkg/auth"
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/angelmondragon/pressreach-backend/pkg/enums"
)

// Identity is what the auth layer knows about a caller.
type Identity struct {
	ClerkUserID string
	Email       string
	FirstName   string
	LastName    string
}

// IdentityFromPrincipal converts verified token claims.
func IdentityFromPrincipal(p auth.Principal) Identity {
	return Identity{
		ClerkUserID: strings.TrimSpace(p.Subject),
		Email:       strings.TrimSpace(p.Email),
		FirstName:   strings.TrimSpace(p.FirstName),
		LastName:    strings.TrimSpace(p.LastName),
	}
}

// EmailLocalPart returns the part of the address before '@'.
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func newTenant(id Identity, now time.Time) *models.User {
	limits := enums.PlanTypeFree.Limits()
	return &models.User{
		ClerkUserID:          id.ClerkUserID,
		Email:                id.Email,
		FirstName:            id.FirstName,
		LastName:             id.LastName,
		PlanType:             enums.PlanTypeFree,
		Credits:              limits.Credits,
		MonthlyReleasesLimit: limits.MonthlyReleasesLimit,
		LastLogin:            &now,
	}
}
