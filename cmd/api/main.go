package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/diskleads/leadmarket-backend/api/routes"
	checkoutsvc "github.com/diskleads/leadmarket-backend/internal/checkout"
	"github.com/diskleads/leadmarket-backend/internal/leads"
	"github.com/diskleads/leadmarket-backend/internal/orders"
	mpwebhook "github.com/diskleads/leadmarket-backend/internal/webhooks/mercadopago"
	"github.com/diskleads/leadmarket-backend/pkg/config"
	"github.com/diskleads/leadmarket-backend/pkg/db"
	"github.com/diskleads/leadmarket-backend/pkg/logger"
	"github.com/diskleads/leadmarket-backend/pkg/mercadopago"
	"github.com/diskleads/leadmarket-backend/pkg/migrate"
	"github.com/diskleads/leadmarket-backend/pkg/redis"
	"github.com/diskleads/leadmarket-backend/pkg/storage/gcs"
)

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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	paymentClient, err := mercadopago.NewClient(cfg.Payment, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap payment client", err)
		os.Exit(1)
	}

	leadsRepo := leads.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	ordersService := orders.NewService(orders.ServiceParams{
		Repo:       ordersRepo,
		Linker:     gcsClient,
		Bucket:     cfg.GCS.BucketName,
		AccessMode: cfg.FeatureFlags.GCSAccessMode,
		LinkTTL:    cfg.GCS.DownloadURLExpiry,
	})

	checkoutService := checkoutsvc.NewService(checkoutsvc.Params{
		Leads:        leadsRepo,
		Orders:       ordersRepo,
		Store:        gcsClient,
		Payments:     paymentClient,
		Logger:       logg,
		Bucket:       cfg.GCS.BucketName,
		ExportPrefix: cfg.GCS.ExportPrefix,
		Currency:     cfg.Payment.Currency,
		PollInterval: cfg.Checkout.PollInterval,
		PollAttempts: cfg.Checkout.PollAttempts,
	})

	webhookService, err := mpwebhook.NewService(mpwebhook.Params{
		Payments:    paymentClient,
		Orders:      ordersRepo,
		Idempotency: redisClient,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			GCS:             gcsClient,
			Payments:        paymentClient,
			Leads:           leads.NewService(leadsRepo),
			Checkout:        checkoutService,
			Orders:          ordersService,
			Webhooks:        webhookService,
			MetricsRegistry: registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
