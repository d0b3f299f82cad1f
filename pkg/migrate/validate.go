package migrate

import (
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// Validate checks every .sql file at the root of fsys: the filename carries a
// unique 14-digit version, both goose sections are present with a non-empty
// Up body, and StatementBegin/StatementEnd pairs balance.
func Validate(fsys fs.FS) error {
	if fsys == nil {
		return fmt.Errorf("migrations source is required")
	}

	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	if len(names) == 0 {
		return fmt.Errorf("no migrations found")
	}
	sort.Strings(names)

	seen := map[string]string{}
	for _, name := range names {
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		version := m[1]
		if prev, ok := seen[version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name

		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		if err := validateBody(string(b)); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}
	return nil
}

func validateBody(txt string) error {
	up := strings.Index(txt, "-- +goose Up")
	down := strings.Index(txt, "-- +goose Down")
	switch {
	case up < 0:
		return fmt.Errorf("missing \"-- +goose Up\"")
	case down < 0:
		return fmt.Errorf("missing \"-- +goose Down\"")
	case down < up:
		return fmt.Errorf("down section precedes up")
	}
	if !hasStatement(txt[up+len("-- +goose Up") : down]) {
		return fmt.Errorf("empty Up section")
	}
	begins := strings.Count(txt, "-- +goose StatementBegin")
	ends := strings.Count(txt, "-- +goose StatementEnd")
	if begins != ends {
		return fmt.Errorf("unbalanced StatementBegin/StatementEnd (%d/%d)", begins, ends)
	}
	return nil
}

func hasStatement(section string) bool {
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return true
		}
	}
	return false
}
