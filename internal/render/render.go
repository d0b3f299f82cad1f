// Package render produces the branded HTML and plain-text bodies of a press
// release email.
//
// Both renderers are pure: the same Input always yields the same bytes. Title,
// body, signature and footer are inserted verbatim without HTML escaping. They
// are authored by the tenant and trusted, and signatures are expected to carry
// markup.
package render

import (
	"bytes"
	"strings"
	"text/template"
	"unicode/utf8"
)

const (
	DefaultPrimaryColor   = "#3B82F6"
	DefaultSecondaryColor = "#8B5CF6"
	DefaultAccentColor    = "#10B981"
	DefaultClosing        = "С уважением"
	DefaultHeading        = "Пресс-релиз"
)

// Branding is the fully resolved render context for one tenant.
type Branding struct {
	LogoURL          string `json:"logo_url"`
	PrimaryColor     string `json:"primary_color"`
	SecondaryColor   string `json:"secondary_color"`
	AccentColor      string `json:"accent_color"`
	CompanyName      string `json:"company_name"`
	ContactPerson    string `json:"contact_person"`
	ContactEmail     string `json:"contact_email"`
	ContactPhone     string `json:"contact_phone"`
	Website          string `json:"website"`
	LinkedInURL      string `json:"linkedin_url"`
	TwitterURL       string `json:"twitter_url"`
	FacebookURL      string `json:"facebook_url"`
	InstagramURL     string `json:"instagram_url"`
	YouTubeURL       string `json:"youtube_url"`
	TelegramURL      string `json:"telegram_url"`
	EmailSignature   string `json:"email_signature"`
	DefaultClosing   string `json:"default_closing"`
	FooterText       string `json:"footer_text"`
	ShowLogoInHeader bool   `json:"show_logo_in_header"`
	ShowSocialLinks  bool   `json:"show_social_links"`
}

// Input is what both renderers consume. RecipientName is optional.
type Input struct {
	Title         string
	Body          string
	Branding      Branding
	RecipientName string
}

type socialLink struct {
	URL    string
	Color  string
	Letter string
}

type view struct {
	Input
	Heading  string
	Greeting string
	Social   []socialLink
	Ruler    string
}

// HTML renders the self-contained HTML document.
func HTML(in Input) string {
	return execute(htmlTemplate, in)
}

// PlainText renders the text/plain alternative.
func PlainText(in Input) string {
	return execute(textTemplate, in)
}

// Greeting returns the salutation line used by both bodies.
func Greeting(recipient string) string {
	if recipient == "" {
		return "Здравствуйте!"
	}
	return "Здравствуйте, " + recipient + "!"
}

func execute(t *template.Template, in Input) string {
	in.Branding = withColorDefaults(in.Branding)

	v := view{
		Input:    in,
		Heading:  in.Branding.CompanyName,
		Greeting: Greeting(in.RecipientName),
		Ruler:    strings.Repeat("=", utf8.RuneCountInString(in.Title)),
	}
	if v.Heading == "" {
		v.Heading = DefaultHeading
	}
	if in.Branding.ShowSocialLinks {
		v.Social = socialLinks(in.Branding)
	}

	var buf bytes.Buffer
	// Fields are plain strings and bytes.Buffer never fails a write.
	_ = t.Execute(&buf, v)
	return strings.TrimSpace(buf.String())
}

func withColorDefaults(b Branding) Branding {
	if b.PrimaryColor == "" {
		b.PrimaryColor = DefaultPrimaryColor
	}
	if b.SecondaryColor == "" {
		b.SecondaryColor = DefaultSecondaryColor
	}
	if b.AccentColor == "" {
		b.AccentColor = DefaultAccentColor
	}
	if b.DefaultClosing == "" {
		b.DefaultClosing = DefaultClosing
	}
	return b
}

func socialLinks(b Branding) []socialLink {
	networks := []struct {
		url   string
		name  string
		color string
	}{
		{b.LinkedInURL, "LinkedIn", "#0A66C2"},
		{b.TwitterURL, "Twitter", "#1DA1F2"},
		{b.FacebookURL, "Facebook", "#1877F2"},
		{b.InstagramURL, "Instagram", "#E4405F"},
		{b.YouTubeURL, "YouTube", "#FF0000"},
		{b.TelegramURL, "Telegram", "#0088CC"},
	}

	links := make([]socialLink, 0, len(networks))
	for _, n := range networks {
		if n.url == "" {
			continue
		}
		links = append(links, socialLink{URL: n.url, Color: n.color, Letter: n.name[:1]})
	}
	return links
}
