package pipeline

import (
	"time"

	"github.com/angelmondragon/pressreach-backend/internal/attachments"
	"github.com/angelmondragon/pressreach-backend/internal/render"
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/angelmondragon/pressreach-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInput is the body of a new distribution.
type CreateInput struct {
	Title        string         `json:"press_release_title" validate:"required,max=500"`
	Content      string         `json:"press_release_content" validate:"required"`
	Data         map[string]any `json:"press_release_data"`
	CompanyName  string         `json:"company_name"`
	ContactEmail string         `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string         `json:"contact_phone"`
	MediaIDs     []uuid.UUID    `json:"media_ids" validate:"required,min=1"`
	ScheduledAt  *time.Time     `json:"scheduled_at"`
}

// Created acknowledges a new distribution.
type Created struct {
	ID              uuid.UUID                `json:"id"`
	Status          enums.DistributionStatus `json:"status"`
	TotalPrice      decimal.Decimal          `json:"total_price"`
	TotalMediaCount int                      `json:"total_media_count"`
	CreatedAt       time.Time                `json:"created_at"`
}

// Summary is one row of the distribution listing.
type Summary struct {
	ID              uuid.UUID                `json:"id"`
	Title           string                   `json:"press_release_title"`
	CompanyName     string                   `json:"company_name"`
	Status          enums.DistributionStatus `json:"status"`
	TotalMediaCount int                      `json:"total_media_count"`
	SentCount       int                      `json:"sent_count"`
	FailedCount     int                      `json:"failed_count"`
	TotalPrice      decimal.Decimal          `json:"total_price"`
	CreatedAt       time.Time                `json:"created_at"`
	SentAt          *time.Time               `json:"sent_at"`
}

// Page is one page of summaries.
type Page struct {
	Items      []Summary `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// OutletState is an outlet of a distribution with its delivery outcome.
type OutletState struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	MediaType enums.MediaType      `json:"media_type"`
	Email     string               `json:"email"`
	Status    enums.DeliveryStatus `json:"status"`
	SentAt    *time.Time           `json:"sent_at"`
}

// LogDTO is one delivery log entry.
type LogDTO struct {
	ID            uuid.UUID            `json:"id"`
	MediaOutletID uuid.UUID            `json:"media_outlet_id"`
	ContactType   enums.ContactType    `json:"contact_type"`
	ContactValue  string               `json:"contact_value"`
	Status        enums.DeliveryStatus `json:"status"`
	SentAt        *time.Time           `json:"sent_at"`
	ErrorMessage  *string              `json:"error_message"`
}

// Detail is the full view of a distribution.
type Detail struct {
	Summary
	Content      string                `json:"press_release_content"`
	ContactEmail string                `json:"contact_email"`
	ContactPhone string                `json:"contact_phone"`
	ScheduledAt  *time.Time            `json:"scheduled_at"`
	MediaOutlets []OutletState         `json:"media_outlets"`
	Files        []attachments.FileDTO `json:"files"`
	DeliveryLogs []LogDTO              `json:"delivery_logs"`
}

// OutletSummary is an outlet as shown in a preview.
type OutletSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Preview is what the recipients would receive.
type Preview struct {
	DistributionID uuid.UUID             `json:"distribution_id"`
	HTML           string                `json:"html"`
	Subject        string                `json:"subject"`
	SenderName     string                `json:"sender_name"`
	SenderEmail    string                `json:"sender_email"`
	MediaOutlets   []OutletSummary       `json:"media_outlets"`
	Files          []attachments.FileDTO `json:"files"`
	Branding       render.Branding       `json:"branding"`
}

// Delivery is the outcome for one outlet of a send.
type Delivery struct {
	MediaOutletID uuid.UUID            `json:"media_outlet_id"`
	MediaName     string               `json:"media_name"`
	Email         string               `json:"email"`
	Status        enums.DeliveryStatus `json:"status"`
	Error         string               `json:"error,omitempty"`
}

// SendResult aggregates a finished send.
type SendResult struct {
	DistributionID uuid.UUID                `json:"distribution_id"`
	Total          int                      `json:"total"`
	SentCount      int                      `json:"sent_count"`
	FailedCount    int                      `json:"failed_count"`
	Status         enums.DistributionStatus `json:"status"`
	Results        []Delivery               `json:"results"`
}

func summaryFromModel(d models.Distribution) Summary {
	return Summary{
		ID:              d.ID,
		Title:           d.PressReleaseTitle,
		CompanyName:     d.CompanyName,
		Status:          d.Status,
		TotalMediaCount: d.TotalMediaCount,
		SentCount:       d.SentCount,
		FailedCount:     d.FailedCount,
		TotalPrice:      d.TotalPrice,
		CreatedAt:       d.CreatedAt,
		SentAt:          d.SentAt,
	}
}

func detailFromModel(d *models.Distribution) *Detail {
	logs := make(map[uuid.UUID]models.DeliveryLog, len(d.DeliveryLogs))
	detail := &Detail{
		Summary:      summaryFromModel(*d),
		Content:      d.PressReleaseContent,
		ContactEmail: d.ContactEmail,
		ContactPhone: d.ContactPhone,
		ScheduledAt:  d.ScheduledAt,
		MediaOutlets: make([]OutletState, 0, len(d.MediaOutlets)),
		Files:        make([]attachments.FileDTO, 0, len(d.Files)),
		DeliveryLogs: make([]LogDTO, 0, len(d.DeliveryLogs)),
	}
	for _, l := range d.DeliveryLogs {
		logs[l.MediaOutletID] = l
		detail.DeliveryLogs = append(detail.DeliveryLogs, LogDTO{
			ID:            l.ID,
			MediaOutletID: l.MediaOutletID,
			ContactType:   l.ContactType,
			ContactValue:  l.ContactValue,
			Status:        l.Status,
			SentAt:        l.SentAt,
			ErrorMessage:  l.ErrorMessage,
		})
	}
	for _, m := range d.MediaOutlets {
		state := OutletState{ID: m.ID, Name: m.Name, MediaType: m.MediaType, Email: m.Email, Status: enums.DeliveryStatusPending}
		if l, ok := logs[m.ID]; ok {
			state.Status = l.Status
			state.SentAt = l.SentAt
		}
		detail.MediaOutlets = append(detail.MediaOutlets, state)
	}
	for _, f := range d.Files {
		detail.Files = append(detail.Files, attachments.FromModel(f))
	}
	return detail
}
