package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BrandingProfile holds the per-tenant email branding. At most one per user.
type BrandingProfile struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID             uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	LogoURL            string    `gorm:"column:logo_url"`
	PrimaryColor       string    `gorm:"column:primary_color"`
	SecondaryColor     string    `gorm:"column:secondary_color"`
	AccentColor        string    `gorm:"column:accent_color"`
	CompanyName        string    `gorm:"column:company_name"`
	CompanyDescription string    `gorm:"column:company_description"`
	CompanyTagline     string    `gorm:"column:company_tagline"`
	Address            string    `gorm:"column:address"`
	ContactPerson      string    `gorm:"column:contact_person"`
	ContactEmail       string    `gorm:"column:contact_email"`
	ContactPhone       string    `gorm:"column:contact_phone"`
	Website            string    `gorm:"column:website"`
	LinkedInURL        string    `gorm:"column:linkedin_url"`
	TwitterURL         string    `gorm:"column:twitter_url"`
	FacebookURL        string    `gorm:"column:facebook_url"`
	InstagramURL       string    `gorm:"column:instagram_url"`
	YouTubeURL         string    `gorm:"column:youtube_url"`
	TelegramURL        string    `gorm:"column:telegram_url"`
	EmailSignature     string    `gorm:"column:email_signature"`
	DefaultClosing     string    `gorm:"column:default_closing"`
	TemplateStyle      string    `gorm:"column:template_style"`
	ShowLogoInHeader   bool      `gorm:"column:show_logo_in_header;not null"`
	ShowSocialLinks    bool      `gorm:"column:show_social_links;not null"`
	FooterText         string    `gorm:"column:footer_text"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *BrandingProfile) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
