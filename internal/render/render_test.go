package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullBranding() Branding {
	return Branding{
		LogoURL:          "https://cdn.example.com/logo.png",
		PrimaryColor:     "#112233",
		SecondaryColor:   "#445566",
		CompanyName:      "Acme",
		ContactPerson:    "Ivan Petrov",
		ContactEmail:     "press@acme.test",
		ContactPhone:     "+7 900 000 00 00",
		Website:          "https://acme.test",
		LinkedInURL:      "https://linkedin.com/acme",
		TelegramURL:      "https://t.me/acme",
		TwitterURL:       "https://x.com/acme",
		DefaultClosing:   "Best",
		FooterText:       "Acme footer",
		ShowLogoInHeader: true,
		ShowSocialLinks:  true,
	}
}

func TestHTMLDefaultsForEmptyBranding(t *testing.T) {
	html := HTML(Input{Title: "T", Body: "B", Branding: Branding{CompanyName: "ivan", ShowLogoInHeader: true, ShowSocialLinks: true}})

	assert.Contains(t, html, "Здравствуйте!")
	assert.Contains(t, html, "linear-gradient(135deg, #3B82F6 0%, #8B5CF6 100%)")
	assert.Contains(t, html, "С уважением,")
	assert.Contains(t, html, `<h1 style="margin: 0; color: white; font-size: 24px; font-weight: bold;">ivan</h1>`)
	assert.Contains(t, html, "© ivan - Создано с помощью PressReach")
	assert.NotContains(t, html, "<img")
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
}

func TestHTMLHeadingFallback(t *testing.T) {
	html := HTML(Input{Title: "T", Body: "B"})
	assert.Contains(t, html, ">Пресс-релиз</h1>")
}

func TestHTMLGreetingWithRecipient(t *testing.T) {
	html := HTML(Input{Title: "T", Body: "B", RecipientName: "Анна"})
	assert.Contains(t, html, "Здравствуйте, Анна!")
}

func TestHTMLFullBranding(t *testing.T) {
	html := HTML(Input{Title: "Launch", Body: "line1\nline2", Branding: fullBranding()})

	assert.Contains(t, html, `<img src="https://cdn.example.com/logo.png" alt="Acme" style="max-height: 60px; max-width: 200px;">`)
	assert.Contains(t, html, `<h2 style="color: #112233;`)
	assert.Contains(t, html, "white-space: pre-wrap;\">line1\nline2</div>")
	assert.Contains(t, html, `href="mailto:press@acme.test"`)
	assert.Contains(t, html, "Тел: +7 900 000 00 00")
	assert.Contains(t, html, `<a href="https://acme.test" style="color: #112233;">https://acme.test</a>`)
	assert.Contains(t, html, "Best,")
	assert.Contains(t, html, "Acme footer")
	assert.Contains(t, html, "background-color: #f9fafb; border-radius: 8px")
}

func TestHTMLSocialOrderAndColors(t *testing.T) {
	html := HTML(Input{Title: "T", Body: "B", Branding: fullBranding()})

	linkedin := strings.Index(html, "#0A66C2")
	twitter := strings.Index(html, "#1DA1F2")
	telegram := strings.Index(html, "#0088CC")
	require.NotEqual(t, -1, linkedin)
	require.NotEqual(t, -1, twitter)
	require.NotEqual(t, -1, telegram)
	assert.Less(t, linkedin, twitter)
	assert.Less(t, twitter, telegram)

	assert.NotContains(t, html, "#1877F2", "facebook url unset")
	assert.NotContains(t, html, "#FF0000", "youtube url unset")
	assert.Contains(t, html, `font-weight: bold;">L</span>`)
	assert.Contains(t, html, `font-weight: bold;">T</span>`)
}

func TestHTMLSocialHidden(t *testing.T) {
	b := fullBranding()
	b.ShowSocialLinks = false
	assert.NotContains(t, HTML(Input{Title: "T", Body: "B", Branding: b}), "#0A66C2")
}

func TestHTMLLogoHiddenByFlag(t *testing.T) {
	b := fullBranding()
	b.ShowLogoInHeader = false
	assert.NotContains(t, HTML(Input{Title: "T", Body: "B", Branding: b}), "<img")
}

func TestHTMLSignatureVerbatim(t *testing.T) {
	b := fullBranding()
	b.EmailSignature = "<b>Team Acme</b>"
	html := HTML(Input{Title: "T", Body: "B", Branding: b})

	assert.Contains(t, html, "<b>Team Acme</b>")
	assert.NotContains(t, html, "mailto:", "assembled signature is replaced by the custom one")
}

func TestHTMLDoesNotEscape(t *testing.T) {
	html := HTML(Input{Title: "<i>T</i>", Body: "<p>B & C</p>"})
	assert.Contains(t, html, "<p>B & C</p>")
	assert.Contains(t, html, "<title><i>T</i></title>")
}

func TestRenderDeterministic(t *testing.T) {
	in := Input{Title: "Launch", Body: "Body", Branding: fullBranding(), RecipientName: "Anna"}
	assert.Equal(t, HTML(in), HTML(in))
	assert.Equal(t, PlainText(in), PlainText(in))
}

func TestPlainTextFull(t *testing.T) {
	got := PlainText(Input{Title: "Запуск", Body: "Текст", Branding: fullBranding()})

	want := "Здравствуйте!\n\n" +
		"Запуск\n======\n\n" +
		"Текст\n\n" +
		"Best,\n\n" +
		"Ivan Petrov\nAcme\n\n" +
		"Email: press@acme.test\n" +
		"Тел: +7 900 000 00 00\n" +
		"Веб-сайт: https://acme.test\n\n" +
		"---\nЭто автоматически сгенерированное письмо.\n© Acme - Создано с помощью PressReach"
	assert.Equal(t, want, got)
}

func TestPlainTextMinimal(t *testing.T) {
	got := PlainText(Input{Title: "T", Body: "B", Branding: Branding{CompanyName: "ivan"}})

	want := "Здравствуйте!\n\nT\n=\n\nB\n\nС уважением,\n\n\nivan\n\n\n---\n" +
		"Это автоматически сгенерированное письмо.\n© ivan - Создано с помощью PressReach"
	assert.Equal(t, want, got)
}
