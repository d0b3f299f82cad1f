package branding

import (
	"strings"

	"github.com/angelmondragon/pressreach-backend/internal/render"
	"github.com/angelmondragon/pressreach-backend/internal/users"
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
)

const DefaultTemplateStyle = "modern"

// defaultCompanyName is the tenant's first name, else the email local-part.
func defaultCompanyName(user *models.User) string {
	if name := strings.TrimSpace(user.FirstName); name != "" {
		return name
	}
	return users.EmailLocalPart(user.Email)
}

func defaultProfile(user *models.User) *models.BrandingProfile {
	company := defaultCompanyName(user)
	return &models.BrandingProfile{
		UserID:           user.ID,
		PrimaryColor:     render.DefaultPrimaryColor,
		SecondaryColor:   render.DefaultSecondaryColor,
		AccentColor:      render.DefaultAccentColor,
		CompanyName:      company,
		ContactEmail:     user.Email,
		DefaultClosing:   render.DefaultClosing,
		TemplateStyle:    DefaultTemplateStyle,
		ShowLogoInHeader: true,
		ShowSocialLinks:  true,
	}
}

// Context maps a stored profile onto the render context. Empty strings fall
// back to the defaults; a nil profile yields the pure defaults.
func Context(p *models.BrandingProfile, user *models.User) render.Branding {
	b := render.Branding{
		PrimaryColor:     render.DefaultPrimaryColor,
		SecondaryColor:   render.DefaultSecondaryColor,
		AccentColor:      render.DefaultAccentColor,
		DefaultClosing:   render.DefaultClosing,
		ShowLogoInHeader: true,
		ShowSocialLinks:  true,
	}
	if user != nil {
		b.CompanyName = defaultCompanyName(user)
		b.ContactEmail = user.Email
	}
	if p == nil {
		return b
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&b.LogoURL, p.LogoURL)
	set(&b.PrimaryColor, p.PrimaryColor)
	set(&b.SecondaryColor, p.SecondaryColor)
	set(&b.AccentColor, p.AccentColor)
	set(&b.CompanyName, p.CompanyName)
	set(&b.ContactPerson, p.ContactPerson)
	set(&b.ContactEmail, p.ContactEmail)
	set(&b.ContactPhone, p.ContactPhone)
	set(&b.Website, p.Website)
	set(&b.LinkedInURL, p.LinkedInURL)
	set(&b.TwitterURL, p.TwitterURL)
	set(&b.FacebookURL, p.FacebookURL)
	set(&b.InstagramURL, p.InstagramURL)
	set(&b.YouTubeURL, p.YouTubeURL)
	set(&b.TelegramURL, p.TelegramURL)
	set(&b.EmailSignature, p.EmailSignature)
	set(&b.DefaultClosing, p.DefaultClosing)
	set(&b.FooterText, p.FooterText)
	b.ShowLogoInHeader = p.ShowLogoInHeader
	b.ShowSocialLinks = p.ShowSocialLinks
	return b
}
