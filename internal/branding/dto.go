package branding

import (
	"time"

	"github.com/angelmondragon/pressreach-backend/internal/render"
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/google/uuid"
)

// ProfileDTO is the API shape of a branding profile.
type ProfileDTO struct {
	ID                 uuid.UUID `json:"id"`
	LogoURL            string    `json:"logo_url"`
	PrimaryColor       string    `json:"primary_color"`
	SecondaryColor     string    `json:"secondary_color"`
	AccentColor        string    `json:"accent_color"`
	CompanyName        string    `json:"company_name"`
	CompanyTagline     string    `json:"company_tagline"`
	CompanyDescription string    `json:"company_description"`
	ContactPerson      string    `json:"contact_person"`
	ContactEmail       string    `json:"contact_email"`
	ContactPhone       string    `json:"contact_phone"`
	Website            string    `json:"website"`
	Address            string    `json:"address"`
	LinkedInURL        string    `json:"linkedin_url"`
	TwitterURL         string    `json:"twitter_url"`
	FacebookURL        string    `json:"facebook_url"`
	InstagramURL       string    `json:"instagram_url"`
	YouTubeURL         string    `json:"youtube_url"`
	TelegramURL        string    `json:"telegram_url"`
	EmailSignature     string    `json:"email_signature"`
	DefaultClosing     string    `json:"default_closing"`
	TemplateStyle      string    `json:"email_template_style"`
	ShowLogoInHeader   bool      `json:"show_logo_in_header"`
	ShowSocialLinks    bool      `json:"show_social_links"`
	FooterText         string    `json:"footer_text"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// FromModel converts the stored row.
func FromModel(p *models.BrandingProfile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		ID:                 p.ID,
		LogoURL:            p.LogoURL,
		PrimaryColor:       p.PrimaryColor,
		SecondaryColor:     p.SecondaryColor,
		AccentColor:        p.AccentColor,
		CompanyName:        p.CompanyName,
		CompanyTagline:     p.CompanyTagline,
		CompanyDescription: p.CompanyDescription,
		ContactPerson:      p.ContactPerson,
		ContactEmail:       p.ContactEmail,
		ContactPhone:       p.ContactPhone,
		Website:            p.Website,
		Address:            p.Address,
		LinkedInURL:        p.LinkedInURL,
		TwitterURL:         p.TwitterURL,
		FacebookURL:        p.FacebookURL,
		InstagramURL:       p.InstagramURL,
		YouTubeURL:         p.YouTubeURL,
		TelegramURL:        p.TelegramURL,
		EmailSignature:     p.EmailSignature,
		DefaultClosing:     p.DefaultClosing,
		TemplateStyle:      p.TemplateStyle,
		ShowLogoInHeader:   p.ShowLogoInHeader,
		ShowSocialLinks:    p.ShowSocialLinks,
		FooterText:         p.FooterText,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	LogoURL            *string `json:"logo_url" validate:"omitempty,max=500"`
	PrimaryColor       *string `json:"primary_color" validate:"omitempty,hexcolor,max=7"`
	SecondaryColor     *string `json:"secondary_color" validate:"omitempty,hexcolor,max=7"`
	AccentColor        *string `json:"accent_color" validate:"omitempty,hexcolor,max=7"`
	CompanyName        *string `json:"company_name" validate:"omitempty,max=255"`
	CompanyTagline     *string `json:"company_tagline" validate:"omitempty,max=500"`
	CompanyDescription *string `json:"company_description"`
	ContactPerson      *string `json:"contact_person" validate:"omitempty,max=255"`
	ContactEmail       *string `json:"contact_email" validate:"omitempty,max=255"`
	ContactPhone       *string `json:"contact_phone" validate:"omitempty,max=50"`
	Website            *string `json:"website" validate:"omitempty,max=500"`
	Address            *string `json:"address"`
	LinkedInURL        *string `json:"linkedin_url" validate:"omitempty,max=500"`
	TwitterURL         *string `json:"twitter_url" validate:"omitempty,max=500"`
	FacebookURL        *string `json:"facebook_url" validate:"omitempty,max=500"`
	InstagramURL       *string `json:"instagram_url" validate:"omitempty,max=500"`
	YouTubeURL         *string `json:"youtube_url" validate:"omitempty,max=500"`
	TelegramURL        *string `json:"telegram_url" validate:"omitempty,max=500"`
	EmailSignature     *string `json:"email_signature"`
	DefaultClosing     *string `json:"default_closing"`
	TemplateStyle      *string `json:"email_template_style" validate:"omitempty,max=50"`
	ShowLogoInHeader   *bool   `json:"show_logo_in_header"`
	ShowSocialLinks    *bool   `json:"show_social_links"`
	FooterText         *string `json:"footer_text"`
}

// Resolved is the outcome of resolving a tenant's branding.
type Resolved struct {
	Profile  *models.BrandingProfile
	Branding render.Branding
	// Stored reports whether the tenant had a profile before the call.
	Stored bool
}

// EmailPreview is a rendered HTML body for an ad-hoc title and content.
type EmailPreview struct {
	HTML            string `json:"html"`
	BrandingApplied bool   `json:"branding_applied"`
}
