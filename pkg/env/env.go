// Package env reads process settings that must be known before config.Load,
// such as the log format used while loading configuration itself.
package env

import (
	"os"
	"strconv"
	"strings"
)

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// Bool parses key with strconv.ParseBool. Unset or unparsable values yield
// fallback.
func Bool(key string, fallback bool) bool {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
