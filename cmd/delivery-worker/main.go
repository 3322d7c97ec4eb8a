package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/diskleads/leadmarket-backend/internal/delivery"
	"github.com/diskleads/leadmarket-backend/internal/orders"
	"github.com/diskleads/leadmarket-backend/pkg/config"
	"github.com/diskleads/leadmarket-backend/pkg/db"
	"github.com/diskleads/leadmarket-backend/pkg/logger"
	"github.com/diskleads/leadmarket-backend/pkg/mailer"
	"github.com/diskleads/leadmarket-backend/pkg/metrics"
	"github.com/diskleads/leadmarket-backend/pkg/migrate"
	"github.com/diskleads/leadmarket-backend/pkg/redis"
)

const lockKeyFormat = "dl:delivery-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "delivery-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "delivery-worker"

	logg = logger.New(logger.Options{
		ServiceName: "delivery-worker",
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sender, err := buildSender(cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mail sender", err)
		os.Exit(1)
	}

	lock, err := delivery.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Watcher.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create watcher lock", err)
		os.Exit(1)
	}

	watcher, err := delivery.NewWatcher(delivery.WatcherParams{
		Orders:   orders.NewRepository(dbClient.DB()),
		Sender:   sender,
		Logger:   logg,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Lock:     lock,
		Interval: cfg.Watcher.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery watcher", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting delivery worker")

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "delivery worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "delivery worker shutting down gracefully")
}

func buildSender(cfg *config.Config, logg *logger.Logger) (mailer.Sender, error) {
	if cfg.FeatureFlags.MailerMode == "nop" {
		logg.Warn(context.Background(), "mailer disabled; delivery emails will be dropped")
		return mailer.NopSender{}, nil
	}
	return mailer.NewSMTPSender(cfg.SMTP, logg)
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
