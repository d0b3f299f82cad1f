package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// CreateSQLMigration writes <dir>/<version>_<name>.sql. The version is the
// current UTC time, bumped past the newest existing file so ordering holds
// even when two migrations are created within the same second.
func CreateSQLMigration(dir string, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	version, err := nextVersion(dir, now.UTC())
	if err != nil {
		return "", err
	}
	fullpath := filepath.Join(dir, fmt.Sprintf("%d_%s.sql", version, safe))

	template := fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
SELECT 1; -- %s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
SELECT 1; -- rollback %s
-- +goose StatementEnd
`, safe, safe)

	f, err := os.OpenFile(fullpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", fullpath, err)
	}
	defer f.Close()
	if _, err := f.WriteString(template); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

func nextVersion(dir string, now time.Time) (int64, error) {
	candidate, err := strconv.ParseInt(now.Format(versionLayout), 10, 64)
	if err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read dir %q: %w", dir, err)
	}
	for _, e := range entries {
		m := sqlFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		existing, err := strconv.ParseInt(m[1], 10, 64)
		if err == nil && existing >= candidate {
			candidate = existing + 1
		}
	}
	return candidate, nil
}
