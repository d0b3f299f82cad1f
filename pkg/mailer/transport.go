// Package mailer is the outbound SMTP transport.
package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pressreach-backend/pkg/config"
	"github.com/wneessen/go-mail"
)

const (
	implicitTLSPort = 465
	defaultTimeout  = 60 * time.Second
)

// Sender delivers a single envelope. Implementations never retry.
type Sender interface {
	Send(ctx context.Context, env Envelope) error
}

// SendError reports a failed delivery to one recipient.
type SendError struct {
	Recipient string
	Err       error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("smtp send to %s: %v", e.Recipient, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

type smtpClient interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
	DialWithContext(ctx context.Context) error
	Close() error
}

// Transport sends envelopes through the configured SMTP relay. Port 465 uses
// implicit TLS; every other port requires STARTTLS before authentication.
type Transport struct {
	cfg       config.SMTPConfig
	newClient func() (smtpClient, error)
}

// NewTransport validates the relay settings and returns a transport.
func NewTransport(cfg config.SMTPConfig) (*Transport, error) {
	if strings.TrimSpace(cfg.Server) == "" {
		return nil, fmt.Errorf("smtp server is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("smtp port must be positive")
	}
	if cfg.Sender() == "" {
		return nil, fmt.Errorf("sender address is required")
	}

	t := &Transport{cfg: cfg}
	t.newClient = func() (smtpClient, error) {
		return mail.NewClient(cfg.Server, clientOptions(cfg)...)
	}
	return t, nil
}

// FromEmail is the static envelope sender.
func (t *Transport) FromEmail() string { return t.cfg.Sender() }

// DefaultDisplayName is used when the tenant has no company name.
func (t *Transport) DefaultDisplayName() string { return t.cfg.FromName }

// Send delivers env. Any failure is returned as *SendError.
func (t *Transport) Send(ctx context.Context, env Envelope) error {
	if env.FromEmail == "" {
		env.FromEmail = t.cfg.Sender()
	}
	if env.DisplayName == "" {
		env.DisplayName = t.cfg.FromName
	}

	msg, err := BuildMessage(env)
	if err != nil {
		return &SendError{Recipient: env.To, Err: err}
	}

	client, err := t.newClient()
	if err != nil {
		return &SendError{Recipient: env.To, Err: err}
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return &SendError{Recipient: env.To, Err: err}
	}
	return nil
}

// Check dials the relay, negotiates TLS and authenticates without sending.
func (t *Transport) Check(ctx context.Context) error {
	client, err := t.newClient()
	if err != nil {
		return err
	}
	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("dial %s:%d: %w", t.cfg.Server, t.cfg.Port, err)
	}
	return client.Close()
}

func implicitTLS(port int) bool { return port == implicitTLSPort }

func clientOptions(cfg config.SMTPConfig) []mail.Option {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(timeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if implicitTLS(cfg.Port) {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	return opts
}
