// Package logger wraps zerolog with fields carried in the request context.
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/angelmondragon/pressreach-backend/pkg/env"
	"github.com/rs/zerolog"
)

const redacted = "[REDACTED]"

// sensitiveKeys are field name fragments whose values are never written.
var sensitiveKeys = []string{"password", "secret", "token", "authorization", "api_key"}

// Options configures the structured logger. Format falls back to LOG_FORMAT
// ("json" or "console").
type Options struct {
	ServiceName string
	Level       zerolog.Level
	WarnStack   bool
	Format      string
	Output      io.Writer
}

type Logger struct {
	base      *zerolog.Logger
	warnStack bool
}

type ctxKey struct{}

func New(opts Options) *Logger {
	if opts.Level == zerolog.NoLevel {
		opts.Level = zerolog.InfoLevel
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	format := opts.Format
	if format == "" {
		format = env.Get("LOG_FORMAT", "json")
	}
	if strings.EqualFold(format, "console") {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
			NoColor:    env.Bool("NO_COLOR", false),
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.
		New(output).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger().
		Level(opts.Level)

	return &Logger{
		base:      &logger,
		warnStack: opts.WarnStack,
	}
}

func ParseLevel(value string) zerolog.Level {
	levelString := strings.ToLower(strings.TrimSpace(value))
	if levelString == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(levelString); err == nil {
		return lvl
	}
	return zerolog.InfoLevel
}

func (l *Logger) loggerFromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return l.base
	}
	if entry, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
		return entry
	}
	return l.base
}

func (l *Logger) attach(ctx context.Context, entry zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, &entry)
}

// WithField returns a context whose log lines carry key. Values under
// credential-like keys are replaced with a placeholder.
func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	entry := l.loggerFromContext(ctx)
	return l.attach(ctx, entry.With().Interface(key, scrub(key, value)).Logger())
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	entry := l.loggerFromContext(ctx)
	builder := entry.With()
	for k, v := range fields {
		builder = builder.Interface(k, scrub(k, v))
	}
	return l.attach(ctx, builder.Logger())
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

// WithUserID tags the tenant's internal id.
func (l *Logger) WithUserID(ctx context.Context, userID string) context.Context {
	return l.WithField(ctx, "user_id", userID)
}

// WithClerkUserID tags the identity provider subject of the caller.
func (l *Logger) WithClerkUserID(ctx context.Context, clerkUserID string) context.Context {
	return l.WithField(ctx, "clerk_user_id", clerkUserID)
}

func (l *Logger) WithDistributionID(ctx context.Context, distributionID string) context.Context {
	return l.WithField(ctx, "distribution_id", distributionID)
}

func (l *Logger) WithOutletID(ctx context.Context, outletID string) context.Context {
	return l.WithField(ctx, "outlet_id", outletID)
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.loggerFromContext(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.loggerFromContext(ctx).Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	event := l.loggerFromContext(ctx).Warn()
	if l.warnStack {
		event = event.Str("stack", stackTrace())
	}
	event.Msg(msg)
}

func (l *Logger) Error(ctx context.Context, msg string, err error) {
	event := l.loggerFromContext(ctx).Error()
	if err != nil {
		event = event.Err(err)
	}
	event.Str("stack", stackTrace()).Msg(msg)
}

func scrub(key string, value any) any {
	lower := strings.ToLower(key)
	for _, fragment := range sensitiveKeys {
		if strings.Contains(lower, fragment) {
			return redacted
		}
	}
	return value
}

func stackTrace() string {
	return strings.TrimSpace(string(debug.Stack()))
}
