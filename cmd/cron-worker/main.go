package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/pressreach-backend/internal/attachments"
	"github.com/angelmondragon/pressreach-backend/internal/cron"
	"github.com/angelmondragon/pressreach-backend/internal/distributions"
	"github.com/angelmondragon/pressreach-backend/pkg/config"
	"github.com/angelmondragon/pressreach-backend/pkg/db"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
	"github.com/angelmondragon/pressreach-backend/pkg/metrics"
	"github.com/angelmondragon/pressreach-backend/pkg/redis"
)

const lockName = "cron-worker"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	var lock cron.Lock = cron.NewLocalLock()
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisLock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName+":"+cfg.App.Env), cfg.Cron.LockTTL)
		if err != nil {
			logg.Error(context.Background(), "failed to create cron lock", err)
			os.Exit(1)
		}
		lock = redisLock
	} else {
		logg.Warn(context.Background(), "redis not configured, using in-process cron lock")
	}

	blobs, err := attachments.NewDiskStore(cfg.Uploads.Root, cfg.Uploads.MaxBytes())
	if err != nil {
		logg.Error(context.Background(), "failed to open upload root", err)
		os.Exit(1)
	}

	distRepo := distributions.NewRepository(dbClient)

	orphanJob, err := cron.NewOrphanUploadsJob(cron.OrphanUploadsJobParams{
		Logger:        logg,
		Store:         blobs,
		Distributions: distRepo,
		Grace:         cfg.Cron.OrphanGrace,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orphan upload job", err)
		os.Exit(1)
	}

	stuckJob, err := cron.NewStuckDistributionsJob(cron.StuckDistributionsJobParams{
		Logger:        logg,
		Distributions: distRepo,
		Grace:         cfg.Cron.StuckGrace,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stuck distribution job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(stuckJob, orphanJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"once": *once,
	})
	logg.Info(ctx, "starting cron worker")

	if *once {
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			os.Exit(1)
		}
		return
	}

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
