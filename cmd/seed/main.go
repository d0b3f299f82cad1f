package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/pressreach-backend/internal/outlets"
	"github.com/angelmondragon/pressreach-backend/pkg/config"
	"github.com/angelmondragon/pressreach-backend/pkg/db"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	result, err := outlets.Seed(ctx, dbClient.DB())
	if err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"categories_created": result.Categories,
		"outlets_created":    result.Outlets,
	})
	logg.Info(ctx, "seed.complete")
}
