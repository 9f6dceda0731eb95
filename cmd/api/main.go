package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/veridian-genomics/revenue-tracker/api/routes"
	"github.com/veridian-genomics/revenue-tracker/internal/customers"
	"github.com/veridian-genomics/revenue-tracker/internal/pricing"
	"github.com/veridian-genomics/revenue-tracker/internal/reports"
	"github.com/veridian-genomics/revenue-tracker/internal/transactions"
	"github.com/veridian-genomics/revenue-tracker/pkg/config"
	"github.com/veridian-genomics/revenue-tracker/pkg/db"
	"github.com/veridian-genomics/revenue-tracker/pkg/logger"
	"github.com/veridian-genomics/revenue-tracker/pkg/metrics"
	"github.com/veridian-genomics/revenue-tracker/pkg/migrate"
	"github.com/veridian-genomics/revenue-tracker/pkg/redis"
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

	var redisClient *redis.Client
	if cfg.Reports.CacheEnabled {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	reportMetrics := metrics.NewReportMetrics(prometheus.DefaultRegisterer)
	reportCache := reports.NewCache(redisClient, cfg.Reports.CacheTTL, logg)

	pricingRepo := pricing.NewRepository(dbClient.DB())
	pricingService, err := pricing.NewService(dbClient, pricingRepo, reportCache, reportMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	ledgerRepo := transactions.NewRepository(dbClient.DB())
	transactionService, err := transactions.NewService(ledgerRepo, pricingService, reportCache)
	if err != nil {
		logg.Error(context.Background(), "failed to create transaction service", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(ledgerRepo, reportCache, reportMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	customerService, err := customers.NewService(
		customers.NewRepository(dbClient.DB()), ledgerRepo, reportService)
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			transactionService,
			pricingService,
			reportService,
			customerService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
