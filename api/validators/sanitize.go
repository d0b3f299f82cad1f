package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims surrounding space, drops control characters other
// than newline and tab, and truncates to maxLen runes so Cyrillic text is
// never cut mid-character.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, strings.TrimSpace(input))
	cleaned = strings.TrimSpace(cleaned)
	if maxLen <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) > maxLen {
		return strings.TrimSpace(string(runes[:maxLen]))
	}
	return cleaned
}
