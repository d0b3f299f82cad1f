package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// Attachment is one file carried by an envelope. MimeType is informational:
// attachments always go out as application/octet-stream.
type Attachment struct {
	FileName string
	Data     []byte
	MimeType string
}

// Envelope is one outbound press release email.
type Envelope struct {
	To          string
	Subject     string
	HTML        string
	Plain       string
	Attachments []Attachment
	FromEmail   string
	DisplayName string
	ReplyTo     string
}

// BuildMessage assembles the MIME message: multipart/alternative over the
// plain and HTML bodies, wrapped in multipart/mixed when attachments exist.
func BuildMessage(env Envelope) (*mail.Msg, error) {
	to := strings.TrimSpace(env.To)
	if to == "" {
		return nil, errors.New("recipient is required")
	}
	if strings.TrimSpace(env.FromEmail) == "" {
		return nil, errors.New("sender address is required")
	}

	m := mail.NewMsg()
	if err := m.FromFormat(env.DisplayName, env.FromEmail); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	replyTo := env.ReplyTo
	if replyTo == "" {
		replyTo = env.FromEmail
	}
	if err := m.ReplyTo(replyTo); err != nil {
		return nil, fmt.Errorf("reply-to: %w", err)
	}
	m.Subject(env.Subject)

	m.SetBodyString(mail.TypeTextPlain, env.Plain)
	m.AddAlternativeString(mail.TypeTextHTML, env.HTML)

	for _, a := range env.Attachments {
		err := m.AttachReader(a.FileName, bytes.NewReader(a.Data), mail.WithFileContentType(mail.TypeAppOctetStream))
		if err != nil {
			return nil, fmt.Errorf("attach %s: %w", a.FileName, err)
		}
	}
	return m, nil
}
