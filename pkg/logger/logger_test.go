package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")
	ctx = log.WithDistributionID(ctx, "dist-9")

	log.Error(ctx, "boom", errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "dist-9", entry["distribution_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "test", entry["service"])
	assert.Contains(t, entry, "stack")
}

func TestLoggerWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf, WarnStack: true})
	log.Warn(context.Background(), "warny")
	assert.Contains(t, buf.String(), "\"stack\"")

	buf.Reset()
	quiet := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})
	quiet.Warn(context.Background(), "warny")
	assert.NotContains(t, buf.String(), "\"stack\"")
}

func TestWithFieldsDoesNotLeakIntoParentContext(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})

	parent := log.WithUserID(context.Background(), "user_1")
	_ = log.WithFields(parent, map[string]any{"outlet_id": "o-1"})

	log.Info(parent, "parent")
	assert.Contains(t, buf.String(), "user_1")
	assert.NotContains(t, buf.String(), "o-1")
}

func TestLevelFiltersDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: buf})
	log.Debug(context.Background(), "hidden")
	assert.Empty(t, buf.String())
}

func TestParseLevelDefaults(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("invalid"))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
}

func TestCredentialFieldsAreRedacted(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})

	ctx := log.WithFields(context.Background(), map[string]any{
		"smtp_password": "hunter2",
		"server":        "mail.hosting.reg.ru",
	})
	ctx = log.WithField(ctx, "Authorization", "Bearer abc")
	log.Info(ctx, "smtp.check")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, redacted, entry["smtp_password"])
	assert.Equal(t, redacted, entry["Authorization"])
	assert.Equal(t, "mail.hosting.reg.ru", entry["server"])
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestConsoleFormatOption(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Format: "console", Output: buf})
	log.Info(log.WithOutletID(context.Background(), "o-7"), "pipeline.delivery.sent")

	assert.Contains(t, buf.String(), "pipeline.delivery.sent")
	assert.Contains(t, buf.String(), "outlet_id=")
	assert.False(t, json.Valid(buf.Bytes()))
}
