package migrate_test

import (
	"bytes"
	"context"
	"testing"
	"testing/fstest"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pressreach-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
	"github.com/angelmondragon/pressreach-backend/pkg/migrate"
)

var sqliteMigrations = fstest.MapFS{
	"20260101000000_create_notes.sql": &fstest.MapFile{Data: []byte(
		"-- +goose Up\nCREATE TABLE notes (id INTEGER PRIMARY KEY);\n\n-- +goose Down\nDROP TABLE notes;\n")},
	"20260101000100_add_note_body.sql": &fstest.MapFile{Data: []byte(
		"-- +goose Up\nALTER TABLE notes ADD COLUMN body TEXT;\n\n-- +goose Down\nALTER TABLE notes DROP COLUMN body;\n")},
}

func newRunner(t *testing.T) (*migrate.Runner, *bytes.Buffer) {
	t.Helper()
	conn := dbtest.Open(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "migrate-test", Output: &logs})
	runner, err := migrate.NewRunner(sqlDB, goose.DialectSQLite3, sqliteMigrations, logg)
	require.NoError(t, err)
	return runner, &logs
}

func TestRunnerUpAndDown(t *testing.T) {
	runner, logs := newRunner(t)
	ctx := context.Background()

	require.NoError(t, runner.Up(ctx))
	version, err := runner.Version(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 20260101000100, version)
	assert.Contains(t, logs.String(), "migrate.step.applied")

	require.NoError(t, runner.Down(ctx))
	version, err = runner.Version(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 20260101000000, version)
}

func TestRunnerMigrateTo(t *testing.T) {
	runner, _ := newRunner(t)
	ctx := context.Background()

	require.NoError(t, runner.MigrateTo(ctx, "20260101000000"))
	version, err := runner.Version(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 20260101000000, version)

	require.NoError(t, runner.MigrateTo(ctx, "20260101000100"))
	status, err := runner.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status, 2)
	for _, s := range status {
		assert.Equal(t, goose.StateApplied, s.State)
	}

	require.Error(t, runner.MigrateTo(ctx, "latest"))
}
