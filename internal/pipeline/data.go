package pipeline

import (
	"encoding/json"
	"strings"

	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
)

// Keys the coordinator owns inside press_release_data. Caller metadata with
// the same names is overwritten.
const (
	keyEmailHTML    = "email_html"
	keyEmailPlain   = "email_plain"
	keyBrandingUsed = "branding_used"
)

type storedBodies struct {
	EmailHTML    string `json:"email_html"`
	EmailPlain   string `json:"email_plain"`
	BrandingUsed bool   `json:"branding_used"`
}

func encodeData(meta map[string]any, html, plain string, brandingUsed bool) (string, error) {
	out := make(map[string]any, len(meta)+3)
	for k, v := range meta {
		out[k] = v
	}
	out[keyEmailHTML] = html
	out[keyEmailPlain] = plain
	out[keyBrandingUsed] = brandingUsed

	raw, err := json.Marshal(out)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "press_release_data is not serialisable")
	}
	return string(raw), nil
}

func decodeBodies(data string) (storedBodies, error) {
	var b storedBodies
	if strings.TrimSpace(data) == "" {
		return b, nil
	}
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		return b, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode press_release_data")
	}
	return b, nil
}
