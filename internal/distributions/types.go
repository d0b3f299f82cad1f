package distributions

import (
	"time"

	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/angelmondragon/pressreach-backend/pkg/enums"
	"github.com/google/uuid"
)

// CreateParams is a fully prepared distribution. Data is the serialized
// metadata blob including the rendered bodies.
type CreateParams struct {
	Title        string
	Content      string
	Data         string
	CompanyName  string
	ContactEmail string
	ContactPhone string
	ScheduledAt  *time.Time
	Outlets      []models.MediaOutlet
}

// ListFilter narrows ListForTenant.
type ListFilter struct {
	Status *enums.DistributionStatus
	Limit  int
	Cursor string
}

// ListResult is one page of distributions, newest first.
type ListResult struct {
	Items      []models.Distribution
	NextCursor string
}

// Outcome is the result of one delivery attempt.
type Outcome struct {
	OutletID     uuid.UUID
	ContactType  enums.ContactType
	ContactValue string
	Status       enums.DeliveryStatus
	SentAt       *time.Time
	ErrorMessage string
	ResponseData map[string]any
}

// FinalStatus derives the terminal status from the delivery counters.
func FinalStatus(sent, failed int) enums.DistributionStatus {
	switch {
	case failed == 0:
		return enums.DistributionStatusCompleted
	case sent == 0:
		return enums.DistributionStatusFailed
	default:
		return enums.DistributionStatusPartiallyCompleted
	}
}
