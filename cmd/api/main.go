package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/pressreach-backend/api/routes"
	"github.com/angelmondragon/pressreach-backend/internal/attachments"
	"github.com/angelmondragon/pressreach-backend/internal/branding"
	"github.com/angelmondragon/pressreach-backend/internal/distributions"
	"github.com/angelmondragon/pressreach-backend/internal/outlets"
	"github.com/angelmondragon/pressreach-backend/internal/pipeline"
	"github.com/angelmondragon/pressreach-backend/internal/users"
	"github.com/angelmondragon/pressreach-backend/pkg/auth"
	"github.com/angelmondragon/pressreach-backend/pkg/config"
	"github.com/angelmondragon/pressreach-backend/pkg/db"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
	"github.com/angelmondragon/pressreach-backend/pkg/mailer"
	"github.com/angelmondragon/pressreach-backend/pkg/metrics"
	"github.com/angelmondragon/pressreach-backend/pkg/migrate"
	"github.com/angelmondragon/pressreach-backend/pkg/redis"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient)
	requireResource(logg, "dev migrations", err)

	deps := routes.Dependencies{DB: dbClient}

	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		requireResource(logg, "redis", err)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		deps.Redis = redisClient
		deps.Idempotency = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency disabled")
	}

	verifier, err := auth.NewVerifier(cfg.Clerk)
	requireResource(logg, "clerk verifier", err)
	deps.Verifier = verifier

	transport, err := mailer.NewTransport(cfg.SMTP)
	requireResource(logg, "smtp transport", err)

	blobs, err := attachments.NewDiskStore(cfg.Uploads.Root, cfg.Uploads.MaxBytes())
	requireResource(logg, "upload root", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Registry = registry
	deps.Gatherer = registry

	deps.Users, err = users.NewService(users.NewRepository(dbClient.DB()))
	requireResource(logg, "users service", err)

	deps.Branding, err = branding.NewService(branding.NewRepository(dbClient.DB()))
	requireResource(logg, "branding service", err)

	deps.Outlets, err = outlets.NewService(outlets.NewRepository(dbClient.DB()))
	requireResource(logg, "outlets service", err)

	files, err := attachments.NewService(attachments.NewRepository(dbClient.DB()), blobs, logg)
	requireResource(logg, "attachments service", err)

	deps.Distributions, err = pipeline.NewService(
		distributions.NewRepository(dbClient),
		deps.Outlets,
		deps.Branding,
		files,
		transport,
		logg,
		pipeline.Options{
			FanOut:    cfg.Pipeline.FanOut,
			FromEmail: transport.FromEmail(),
			Metrics:   metrics.NewDeliveryMetrics(registry),
		},
	)
	requireResource(logg, "pipeline service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-sigCtx.Done()
		logg.Info(ctx, "api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}()

	logg.Info(ctx, "starting api server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "resource not working: "+resource, err)
	os.Exit(1)
}
