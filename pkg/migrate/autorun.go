package migrate

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/pressreach-backend/pkg/config"
	"github.com/angelmondragon/pressreach-backend/pkg/db"
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
)

// MaybeRunDev applies the schema on boot when running in dev mode with
// auto-migrate enabled. Postgres goes through goose; the SQLite dev driver
// is synced from the gorm models since the SQL files are Postgres-specific.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.App.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver})

	if cfg.DB.Driver == db.DriverSQLite {
		logg.Info(ctx, "syncing sqlite schema from models (dev auto-run)")
		if err := client.DB().WithContext(ctx).AutoMigrate(AllModels()...); err != nil {
			return fmt.Errorf("auto-migrate sqlite: %w", err)
		}
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	runner, err := NewRunner(sqlDB, goose.DialectPostgres, Embedded(), logg)
	if err != nil {
		return err
	}
	logg.Info(ctx, "running embedded goose migrations (dev auto-run)")
	if err := runner.Up(ctx); err != nil {
		return err
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}

// AllModels lists every persisted model in dependency order.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.BrandingProfile{},
		&models.Category{},
		&models.MediaOutlet{},
		&models.Distribution{},
		&models.DistributionFile{},
		&models.DeliveryLog{},
	}
}
