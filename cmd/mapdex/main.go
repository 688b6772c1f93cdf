package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mapdex/internal/config"
	"github.com/kailas-cloud/mapdex/internal/db"
	dbRedis "github.com/kailas-cloud/mapdex/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/mapdex/internal/db/sqlite"
	"github.com/kailas-cloud/mapdex/internal/domain"
	logpkg "github.com/kailas-cloud/mapdex/internal/logger"
	"github.com/kailas-cloud/mapdex/internal/metrics"
	"github.com/kailas-cloud/mapdex/internal/repository/completioncache"
	datasetrepo "github.com/kailas-cloud/mapdex/internal/repository/dataset"
	mappingrepo "github.com/kailas-cloud/mapdex/internal/repository/mapping"
	chiTransport "github.com/kailas-cloud/mapdex/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/mapdex/internal/transport/openai"
	assistantuc "github.com/kailas-cloud/mapdex/internal/usecase/assistant"
	datasetuc "github.com/kailas-cloud/mapdex/internal/usecase/dataset"
	healthuc "github.com/kailas-cloud/mapdex/internal/usecase/health"
	mappinguc "github.com/kailas-cloud/mapdex/internal/usecase/mapping"
	validationuc "github.com/kailas-cloud/mapdex/internal/usecase/validation"
	"github.com/kailas-cloud/mapdex/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting mapdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := context.Background()
	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterValidationMetrics()
	metrics.RegisterExportMetrics()
	metrics.RegisterAssistantMetrics()

	mapRepo := mappingrepo.New(store, cfg.Storage.KeyPrefix)
	dsRepo := datasetrepo.New(store, cfg.Storage.KeyPrefix)

	mappingSvc := mappinguc.New(mapRepo)
	validationSvc := validationuc.New(mappingSvc)
	datasetSvc := datasetuc.New(dsRepo, mappingSvc, validationSvc, cfg.Export.MaxRows)

	// Keep the interfaces nil (not typed nil pointers) when the assistant is off.
	var completer domain.Completer
	var assistantHealth healthuc.AssistantChecker
	if cfg.Assistant.Enabled() {
		c := openaiTransport.NewCompleter(&openaiTransport.Config{
			APIKey:    cfg.Assistant.APIKey,
			BaseURL:   cfg.Assistant.BaseURL,
			Model:     cfg.Assistant.Model,
			MaxTokens: cfg.Assistant.MaxTokens,
			Timeout:   time.Duration(cfg.Assistant.TimeoutSec) * time.Second,
			Provider:  cfg.Assistant.Provider,
			Logger:    logger,
		})
		completer, assistantHealth = c, c
		if cfg.Assistant.CacheCompletions {
			completer = completioncache.New(c, store, cfg.Storage.KeyPrefix, cfg.Assistant.Model,
				metrics.AssistantCacheTotal, logger)
		}
		logger.Info("Assistant enabled",
			zap.String("provider", cfg.Assistant.Provider),
			zap.String("model", cfg.Assistant.Model),
			zap.Bool("cache", cfg.Assistant.CacheCompletions),
		)
	}
	assistantSvc := assistantuc.New(mapRepo, completer)
	healthSvc := healthuc.New(store, assistantHealth)

	server := chiTransport.NewServer(chiTransport.Services{
		Mappings:   mappingSvc,
		Datasets:   datasetSvc,
		Validation: validationSvc,
		Assistant:  assistantSvc,
		Health:     healthSvc,
	}, cfg.HTTP.MaxBodyBytes, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware("/metrics"))
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{BaseRouter: r})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore creates the db.Store selected by cfg.Driver. Valkey and Redis
// share the rueidis store.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverValkey, config.DriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.DriverSQLite:
		return dbSQLite.Open(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
