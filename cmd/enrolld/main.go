package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/enrolld/enrolld/internal/application/registrar"
	"github.com/enrolld/enrolld/internal/application/workers"
	"github.com/enrolld/enrolld/internal/config"
	memoryevents "github.com/enrolld/enrolld/pkg/adapters/events/memory"
	redisevents "github.com/enrolld/enrolld/pkg/adapters/events/redis"
	memoryjournal "github.com/enrolld/enrolld/pkg/adapters/journal/memory"
	redisjournal "github.com/enrolld/enrolld/pkg/adapters/journal/redis"
	"github.com/enrolld/enrolld/pkg/adapters/metrics/prometheus"
	memorystorage "github.com/enrolld/enrolld/pkg/adapters/storage/memory"
	"github.com/enrolld/enrolld/pkg/api/grpc"
	"github.com/enrolld/enrolld/pkg/api/http"
	"github.com/enrolld/enrolld/pkg/api/websocket"
	"github.com/enrolld/enrolld/pkg/ports"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting enrolld",
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	ctx := context.Background()

	// Connect to Redis when a backend needs it
	var redisClient *goredis.Client
	if cfg.NeedsRedis() {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// Event bus
	var eventBus ports.EventBus
	switch cfg.EventsBackend {
	case config.BackendRedis:
		consumerName := fmt.Sprintf("enrolld-%d", os.Getpid())
		eventBus, err = redisevents.NewStreamsEventBus(redisClient, "enrolld-workers", consumerName, logger)
		if err != nil {
			logger.Fatal("failed to create event bus", zap.Error(err))
		}
	default:
		eventBus = memoryevents.NewInMemoryEventBus()
	}

	// Event journal
	var journal ports.Journal
	switch cfg.JournalBackend {
	case config.BackendRedis:
		journal = redisjournal.NewJournal(redisClient, "enrolld:journal", cfg.Journal.Capacity, logger)
	default:
		journal = memoryjournal.NewJournal(cfg.Journal.Capacity)
	}

	// Core wiring
	store := memorystorage.NewStore()
	metricsCollector := prometheus.NewCollector()
	validator := registrar.NewValidator()
	manager := registrar.NewManager(store, eventBus, metricsCollector, validator, logger)

	// Worker pool journals the event stream
	workerPool := workers.NewPool(
		cfg.Workers.PoolSize,
		eventBus,
		journal,
		metricsCollector,
		logger,
		cfg.Workers.HealthCheckInterval,
	)
	if err := workerPool.Start(); err != nil {
		logger.Fatal("failed to start worker pool", zap.Error(err))
	}

	// HTTP server with the websocket event stream
	httpServer := http.NewServer(&http.Config{
		Port:    cfg.HTTPPort,
		Manager: manager,
		Journal: journal,
		Metrics: metricsCollector,
		Logger:  logger,
	})
	wsHandler := websocket.NewHandler(eventBus, logger)
	httpServer.SetupWebSocket(wsHandler.HandleEventStream)

	// gRPC server
	grpcServer, err := grpc.NewServer(&grpc.Config{
		Port:   cfg.GRPCPort,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("failed to create gRPC server", zap.Error(err))
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	go func() {
		if err := grpcServer.Start(); err != nil {
			logger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	logger.Info("enrolld started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.String("events_backend", cfg.EventsBackend),
		zap.String("journal_backend", cfg.JournalBackend))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("gRPC server shutdown failed", zap.Error(err))
	}
	if err := workerPool.Shutdown(shutdownCtx); err != nil {
		logger.Error("worker pool shutdown failed", zap.Error(err))
	}
	if err := eventBus.Close(); err != nil {
		logger.Error("event bus close failed", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis close failed", zap.Error(err))
		}
	}

	logger.Info("enrolld stopped")
}

// initLogger builds a production zap logger at the configured level.
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}
