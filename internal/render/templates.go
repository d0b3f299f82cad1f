package render

import "text/template"

var htmlTemplate = template.Must(template.New("email.html").Parse(`
<!DOCTYPE html>
<html lang="ru">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f9fafb;">
    <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);">
        <div style="background: linear-gradient(135deg, {{.Branding.PrimaryColor}} 0%, {{.Branding.SecondaryColor}} 100%); padding: 30px; text-align: center;">
{{- if and .Branding.ShowLogoInHeader .Branding.LogoURL}}
            <div style="text-align: center; margin-bottom: 30px;">
                <img src="{{.Branding.LogoURL}}" alt="{{.Branding.CompanyName}}" style="max-height: 60px; max-width: 200px;">
            </div>
{{- end}}
            <h1 style="margin: 0; color: white; font-size: 24px; font-weight: bold;">{{.Heading}}</h1>
        </div>
        <div style="padding: 40px 30px;">
            <p style="color: #374151; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">{{.Greeting}}</p>
            <h2 style="color: {{.Branding.PrimaryColor}}; font-size: 22px; font-weight: bold; margin: 20px 0 15px 0; line-height: 1.3;">{{.Title}}</h2>
            <div style="color: #4b5563; font-size: 15px; line-height: 1.8; white-space: pre-wrap;">{{.Body}}</div>
            <p style="margin-top: 30px; color: #374151; font-size: 16px;">{{.Branding.DefaultClosing}},</p>
{{- if .Branding.EmailSignature}}
            <div style="margin-top: 30px; padding-top: 20px; border-top: 2px solid {{.Branding.PrimaryColor}};">
                {{.Branding.EmailSignature}}
            </div>
{{- else if or .Branding.ContactPerson .Branding.CompanyName}}
            <div style="margin-top: 30px; padding-top: 20px; border-top: 2px solid {{.Branding.PrimaryColor}};">
{{- if .Branding.ContactPerson}}
                <p style="margin: 5px 0; font-weight: bold; color: {{.Branding.PrimaryColor}};">{{.Branding.ContactPerson}}</p>
{{- end}}
{{- if .Branding.CompanyName}}
                <p style="margin: 5px 0; color: #6b7280;">{{.Branding.CompanyName}}</p>
{{- end}}
{{- if .Branding.ContactEmail}}
                <p style="margin: 5px 0; color: #6b7280;">Email: <a href="mailto:{{.Branding.ContactEmail}}" style="color: {{.Branding.PrimaryColor}};">{{.Branding.ContactEmail}}</a></p>
{{- end}}
{{- if .Branding.ContactPhone}}
                <p style="margin: 5px 0; color: #6b7280;">Тел: {{.Branding.ContactPhone}}</p>
{{- end}}
{{- if .Branding.Website}}
                <p style="margin: 5px 0;"><a href="{{.Branding.Website}}" style="color: {{.Branding.PrimaryColor}};">{{.Branding.Website}}</a></p>
{{- end}}
            </div>
{{- end}}
{{- if .Social}}
            <div style="text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #e5e7eb;">
{{- range .Social}}
                <a href="{{.URL}}" style="display: inline-block; margin: 0 8px; text-decoration: none;"><span style="display: inline-block; width: 32px; height: 32px; background-color: {{.Color}}; color: white; text-align: center; line-height: 32px; border-radius: 50%; font-size: 14px; font-weight: bold;">{{.Letter}}</span></a>
{{- end}}
            </div>
{{- end}}
        </div>
{{- if .Branding.FooterText}}
        <div style="margin-top: 20px; padding: 15px; background-color: #f9fafb; border-radius: 8px; font-size: 12px; color: #6b7280; text-align: center;">
            {{.Branding.FooterText}}
        </div>
{{- end}}
        <div style="padding: 20px; text-align: center; font-size: 12px; color: #9ca3af; background-color: #f9fafb;">
            <p style="margin: 5px 0;">Это автоматически сгенерированное письмо. Пожалуйста, не отвечайте на него.</p>
            <p style="margin: 5px 0;">© {{.Branding.CompanyName}} - Создано с помощью PressReach</p>
        </div>
    </div>
</body>
</html>
`))

var textTemplate = template.Must(template.New("email.txt").Parse(`
{{.Greeting}}

{{.Title}}
{{.Ruler}}

{{.Body}}

{{.Branding.DefaultClosing}},

{{.Branding.ContactPerson}}
{{.Branding.CompanyName}}
{{if .Branding.ContactEmail}}
Email: {{.Branding.ContactEmail}}{{end}}{{if .Branding.ContactPhone}}
Тел: {{.Branding.ContactPhone}}{{end}}{{if .Branding.Website}}
Веб-сайт: {{.Branding.Website}}{{end}}

---
Это автоматически сгенерированное письмо.
© {{.Branding.CompanyName}} - Создано с помощью PressReach
`))
