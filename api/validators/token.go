package validators

import (
	"errors"
	"strings"
)

var ErrMissingToken = errors.New("missing bearer token")

// BearerToken extracts the token from an Authorization header value. The
// "Bearer" scheme is optional and case-insensitive; the scheme word on its own
// is not a token.
func BearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) > 0 && strings.EqualFold(parts[0], "bearer") {
		parts = parts[1:]
	}
	if len(parts) != 1 {
		return "", ErrMissingToken
	}
	return parts[0], nil
}
