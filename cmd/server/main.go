package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/iho/gosettle/internal/adapter/authority"
	"github.com/iho/gosettle/internal/adapter/eventsource/redisstream"
	httpAdapter "github.com/iho/gosettle/internal/adapter/http"
	"github.com/iho/gosettle/internal/adapter/http/handler"
	postgresRepo "github.com/iho/gosettle/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gosettle/internal/adapter/repository/redis"
	"github.com/iho/gosettle/internal/infrastructure/config"
	"github.com/iho/gosettle/internal/infrastructure/eventpublisher"
	"github.com/iho/gosettle/internal/infrastructure/logger"
	"github.com/iho/gosettle/internal/infrastructure/metrics"
	"github.com/iho/gosettle/internal/infrastructure/postgres"
	"github.com/iho/gosettle/internal/infrastructure/redis"
	"github.com/iho/gosettle/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup loggers
	zlog := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = zlog

	slogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Metrics
	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	intentRepo := postgresRepo.NewIntentRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	// Settlement authority client
	authorityClient := authority.NewClient(authority.Config{
		BaseURL: cfg.AuthorityURL,
		Timeout: cfg.AuthorityTimeout,
		Logger:  slogger,
	})

	// Initialize use cases
	intentUC := usecase.NewIntentUseCase(txManager, intentRepo, outboxRepo, idGen, m)
	submitterUC := usecase.NewSubmitterUseCase(intentUC, authorityClient, slogger, m)

	// Reconciliation engine fed by the authority's event stream
	source := redisstream.NewSource(redisClient, redisstream.Config{
		Stream:   cfg.EventStream,
		Group:    cfg.EventGroup,
		Consumer: cfg.EventConsumer,
		Block:    cfg.EventBlockTime,
		Logger:   slogger,
	})
	reconUC := usecase.NewReconciliationUseCase(usecase.ReconciliationConfig{
		TxManager:   txManager,
		IntentRepo:  intentRepo,
		OutboxRepo:  outboxRepo,
		IDGen:       idGen,
		Source:      source,
		Retrier:     retrier,
		Logger:      slogger,
		Metrics:     m,
		AutoConfirm: cfg.ReconAutoConfirm,
		PollBackoff: cfg.ReconPollBackoff,
	})

	// Outbox publisher
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewStreamPublisher(redisClient, cfg.OutboxStream),
		Logger:     slogger,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	// Initialize handlers
	intentHandler := handler.NewIntentHandler(intentUC)
	instructionHandler := handler.NewInstructionHandler(submitterUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		IntentHandler:      intentHandler,
		InstructionHandler: instructionHandler,
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		Metrics:            m,
		Logger:             zlog,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(ctx)
	reconDone := make(chan struct{})
	go func() {
		defer close(reconDone)
		if err := reconUC.Run(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("reconciliation engine stopped")
		}
	}()
	publisherDone := make(chan struct{})
	go func() {
		defer close(publisherDone)
		if err := publisher.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("outbox publisher stopped")
		}
	}()

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	stopWorkers()
	<-reconDone
	<-publisherDone

	log.Info().Msg("server stopped")
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
