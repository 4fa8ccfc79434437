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

	"github.com/pandoralabs/stockline-backend/api/routes"
	"github.com/pandoralabs/stockline-backend/internal/importer"
	"github.com/pandoralabs/stockline-backend/internal/inventory"
	"github.com/pandoralabs/stockline-backend/internal/production"
	"github.com/pandoralabs/stockline-backend/internal/recipes"
	"github.com/pandoralabs/stockline-backend/pkg/config"
	"github.com/pandoralabs/stockline-backend/pkg/db"
	"github.com/pandoralabs/stockline-backend/pkg/forecast"
	"github.com/pandoralabs/stockline-backend/pkg/logger"
	"github.com/pandoralabs/stockline-backend/pkg/metrics"
	"github.com/pandoralabs/stockline-backend/pkg/migrate"
	"github.com/pandoralabs/stockline-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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
	var idempotencyStore redis.IdempotencyStore
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		idempotencyStore = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency replay disabled")
	}

	var forecastClient *forecast.Client
	if cfg.Forecast.Enabled() {
		forecastClient, err = forecast.NewClient(cfg.Forecast.BaseURL, cfg.Forecast.Timeout)
		if err != nil {
			logg.Error(context.Background(), "failed to build forecast client", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	productionMetrics := metrics.NewProductionMetrics(registry)

	inventoryRepo := inventory.NewRepository(dbClient.DB())
	recipesRepo := recipes.NewRepository(dbClient.DB())
	productionRepo := production.NewRepository(dbClient.DB())

	inventoryService, err := inventory.NewService(inventoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	recipesService, err := recipes.NewService(recipesRepo, dbClient, inventoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create recipes service", err)
		os.Exit(1)
	}

	productionService, err := production.NewService(
		productionRepo,
		dbClient,
		recipesRepo,
		production.NewStockDeductor(),
		logg,
		productionMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create production service", err)
		os.Exit(1)
	}

	importerService, err := importer.NewService(inventoryRepo, recipesService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create importer service", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Idempotency: idempotencyStore,
			Forecast:    forecastClient,
			Gatherer:    registry,
			Inventory:   inventoryService,
			Recipes:     recipesService,
			Production:  productionService,
			Importer:    importerService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
