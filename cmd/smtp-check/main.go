package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/pressreach-backend/pkg/config"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
	"github.com/angelmondragon/pressreach-backend/pkg/mailer"
)

// smtp-check dials the configured relay and authenticates without sending.
func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout for the check")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "smtp-check"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	transport, err := mailer.NewTransport(cfg.SMTP)
	if err != nil {
		logg.Error(ctx, "invalid smtp configuration", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"server": cfg.SMTP.Server,
		"port":   cfg.SMTP.Port,
		"from":   transport.FromEmail(),
	})

	checkCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := transport.Check(checkCtx); err != nil {
		logg.Error(ctx, "smtp.check.failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "smtp.check.ok")
}
