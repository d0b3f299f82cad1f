package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/pressreach-backend/pkg/logger"
)

// DefaultDir is where `create` writes new migration files.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Embedded returns the migrations compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Runner applies goose migrations from fsys and reports each step through
// the structured logger.
type Runner struct {
	provider *goose.Provider
	logg     *logger.Logger
}

func NewRunner(db *sql.DB, dialect goose.Dialect, fsys fs.FS, logg *logger.Logger) (*Runner, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if fsys == nil {
		return nil, fmt.Errorf("migrations source is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Runner{provider: provider, logg: logg}, nil
}

func (r *Runner) Up(ctx context.Context) error {
	results, err := r.provider.Up(ctx)
	r.report(ctx, results...)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func (r *Runner) Down(ctx context.Context) error {
	result, err := r.provider.Down(ctx)
	if result != nil {
		r.report(ctx, result)
	}
	if err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

func (r *Runner) Version(ctx context.Context) (int64, error) {
	v, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("get db version: %w", err)
	}
	return v, nil
}

func (r *Runner) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	status, err := r.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}
	return status, nil
}

// MigrateTo moves the schema up or down to targetVersion (YYYYMMDDHHMMSS).
func (r *Runner) MigrateTo(ctx context.Context, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := r.Version(ctx)
	if err != nil {
		return err
	}

	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil
	case current < target:
		results, err = r.provider.UpTo(ctx, target)
	default:
		results, err = r.provider.DownTo(ctx, target)
	}
	r.report(ctx, results...)
	if err != nil {
		return fmt.Errorf("goose migrate %d -> %d: %w", current, target, err)
	}
	return nil
}

func (r *Runner) report(ctx context.Context, results ...*goose.MigrationResult) {
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		stepCtx := r.logg.WithFields(ctx, map[string]any{
			"version":     res.Source.Version,
			"file":        res.Source.Path,
			"direction":   res.Direction,
			"duration_ms": res.Duration.Milliseconds(),
		})
		if res.Error != nil {
			r.logg.Error(stepCtx, "migrate.step.failed", res.Error)
			continue
		}
		r.logg.Info(stepCtx, "migrate.step.applied")
	}
}
