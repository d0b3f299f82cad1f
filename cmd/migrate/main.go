package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/pressreach-backend/pkg/config"
	"github.com/angelmondragon/pressreach-backend/pkg/db"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
	"github.com/angelmondragon/pressreach-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	dir := flag.String("dir", "", "read migrations from this directory instead of the embedded set (create defaults to "+migrate.DefaultDir+")")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	source := migrate.Embedded()
	if *dir != "" {
		source = os.DirFS(*dir)
	}

	// create and validate run without configuration or a database.
	switch *cmd {
	case "create":
		if *name == "" {
			fmt.Fprintln(os.Stderr, "missing -name for create")
			os.Exit(1)
		}
		target := *dir
		if target == "" {
			target = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(target, *name, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create migration: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("created migration:", path)
		return

	case "validate":
		if err := migrate.Validate(source); err != nil {
			fmt.Fprintf(os.Stderr, "migration validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"cmd":      *cmd,
		"embedded": *dir == "",
	})

	if cfg.DB.Driver == db.DriverSQLite {
		fmt.Fprintln(os.Stderr, "goose migrations target postgres; sqlite schemas are synced by the api in dev")
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.SQL()
	requireResource(ctx, logg, "sql database", err)

	runner, err := migrate.NewRunner(sqlDB, goose.DialectPostgres, source, logg)
	requireResource(ctx, logg, "goose provider", err)

	if err := run(ctx, runner, *cmd, *version); err != nil {
		logg.Error(ctx, "migrate.failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migrate.done")
}

func run(ctx context.Context, runner *migrate.Runner, cmd, version string) error {
	switch cmd {
	case "up":
		return runner.Up(ctx)
	case "down":
		return runner.Down(ctx)
	case "status":
		statuses, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
		for _, s := range statuses {
			applied := "-"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.UTC().Format(time.RFC3339)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
		}
		return tw.Flush()
	case "version":
		if version == "" {
			return fmt.Errorf("missing -version for version command")
		}
		return runner.MigrateTo(ctx, version)
	default:
		return fmt.Errorf("unknown -cmd value: %s", cmd)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
