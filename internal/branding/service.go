package branding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/pressreach-backend/internal/render"
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// colorRule admits #RGB, #RGBA and #RRGGBB.
const colorRule = "hexcolor,max=7"

var colors = validator.New()

type brandingRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.BrandingProfile, error)
	CreateIfAbsent(ctx context.Context, profile *models.BrandingProfile) (*models.BrandingProfile, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

// Service resolves and edits tenant branding.
type Service interface {
	Get(ctx context.Context, user *models.User) (*ProfileDTO, error)
	Update(ctx context.Context, user *models.User, input UpdateInput) (*ProfileDTO, error)
	// Resolve returns the render context for the tenant, persisting a default
	// profile when none exists yet.
	Resolve(ctx context.Context, user *models.User) (*Resolved, error)
	PreviewEmail(ctx context.Context, user *models.User, title, content string) (*EmailPreview, error)
}

type service struct {
	repo brandingRepository
}

// NewService builds the branding service.
func NewService(repo brandingRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("branding repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, user *models.User) (*ProfileDTO, error) {
	profile, _, err := s.load(ctx, user)
	if err != nil {
		return nil, err
	}
	return FromModel(profile), nil
}

func (s *service) Resolve(ctx context.Context, user *models.User) (*Resolved, error) {
	profile, existed, err := s.load(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Resolved{
		Profile:  profile,
		Branding: Context(profile, user),
		Stored:   existed,
	}, nil
}

func (s *service) Update(ctx context.Context, user *models.User, input UpdateInput) (*ProfileDTO, error) {
	updates, err := updatesFrom(input)
	if err != nil {
		return nil, err
	}

	profile, _, err := s.load(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, profile.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update branding")
	}

	fresh, err := s.repo.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload branding")
	}
	return FromModel(fresh), nil
}

func (s *service) PreviewEmail(ctx context.Context, user *models.User, title, content string) (*EmailPreview, error) {
	resolved, err := s.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}
	html := render.HTML(render.Input{Title: title, Body: content, Branding: resolved.Branding})
	return &EmailPreview{HTML: html, BrandingApplied: resolved.Stored}, nil
}

func (s *service) load(ctx context.Context, user *models.User) (*models.BrandingProfile, bool, error) {
	if user == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}

	profile, err := s.repo.FindByUserID(ctx, user.ID)
	if err == nil {
		return profile, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branding")
	}

	profile, err = s.repo.CreateIfAbsent(ctx, defaultProfile(user))
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create default branding")
	}
	return profile, false, nil
}

func updatesFrom(in UpdateInput) (map[string]any, error) {
	updates := map[string]any{}

	fields := []struct {
		column string
		value  *string
		def    string
	}{
		{"primary_color", in.PrimaryColor, render.DefaultPrimaryColor},
		{"secondary_color", in.SecondaryColor, render.DefaultSecondaryColor},
		{"accent_color", in.AccentColor, render.DefaultAccentColor},
	}
	for _, c := range fields {
		if c.value == nil {
			continue
		}
		v := strings.TrimSpace(*c.value)
		if v == "" {
			updates[c.column] = c.def
			continue
		}
		if colors.Var(v, colorRule) != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid color").
				WithDetails(map[string]string{"field": c.column, "value": v})
		}
		updates[c.column] = v
	}

	text := map[string]*string{
		"logo_url":            in.LogoURL,
		"company_name":        in.CompanyName,
		"company_tagline":     in.CompanyTagline,
		"company_description": in.CompanyDescription,
		"contact_person":      in.ContactPerson,
		"contact_email":       in.ContactEmail,
		"contact_phone":       in.ContactPhone,
		"website":             in.Website,
		"address":             in.Address,
		"linkedin_url":        in.LinkedInURL,
		"twitter_url":         in.TwitterURL,
		"facebook_url":        in.FacebookURL,
		"instagram_url":       in.InstagramURL,
		"youtube_url":         in.YouTubeURL,
		"telegram_url":        in.TelegramURL,
		"email_signature":     in.EmailSignature,
		"default_closing":     in.DefaultClosing,
		"template_style":      in.TemplateStyle,
		"footer_text":         in.FooterText,
	}
	for column, value := range text {
		if value != nil {
			updates[column] = *value
		}
	}

	if in.ShowLogoInHeader != nil {
		updates["show_logo_in_header"] = *in.ShowLogoInHeader
	}
	if in.ShowSocialLinks != nil {
		updates["show_social_links"] = *in.ShowSocialLinks
	}
	return updates, nil
}
