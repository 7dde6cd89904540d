package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/cafesv/whatsapp-sentiment-back/internal/ai"
	"github.com/cafesv/whatsapp-sentiment-back/internal/bus"
	"github.com/cafesv/whatsapp-sentiment-back/internal/cache"
	"github.com/cafesv/whatsapp-sentiment-back/internal/config"
	"github.com/cafesv/whatsapp-sentiment-back/internal/queue"
	"github.com/cafesv/whatsapp-sentiment-back/internal/repository"
	"github.com/cafesv/whatsapp-sentiment-back/internal/service"
	"github.com/cafesv/whatsapp-sentiment-back/internal/worker"
)

// Standalone consumer process. Requires the same Redis and Postgres as the
// API: a local queue or in-memory repository would never see the API's jobs.
func main() {
	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)

	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		logger.Warn("failed loading .env files", "error", err)
	}
	cfg := config.Load()

	if cfg.RedisAddr == "" {
		logger.Error("REDIS_ADDR is required for the standalone worker")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required for the standalone worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.NewPostgresMessagesRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("postgres init failed", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	jobQueue, err := queue.NewRedisQueue(ctx, queue.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Queue:    cfg.QueueName,
	}, logger)
	if err != nil {
		logger.Error("redis queue init failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = jobQueue.Close() }()

	analysisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.Error("redis cache init failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = analysisCache.Close() }()

	eventBus, err := bus.NewRedisBus(ctx, bus.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Channel:  cfg.DashboardChannel,
	}, logger)
	if err != nil {
		logger.Error("redis bus init failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = eventBus.Close() }()

	generator := ai.NewGeminiClient(ai.GeminiClientConfig{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		Model:      cfg.GeminiModel,
		Timeout:    time.Duration(cfg.GeminiTimeoutMS) * time.Millisecond,
		MaxRetries: cfg.GeminiMaxRetries,
	})
	analysis := service.NewAnalysisService(service.AnalysisDependencies{
		Generator: generator,
		Cache:     analysisCache,
		CacheTTL:  time.Duration(cfg.AnalysisCacheTTLSeconds) * time.Second,
		Logger:    logger,
	})

	processor := worker.NewProcessor(worker.Dependencies{
		Queue:       jobQueue,
		Analyzer:    analysis,
		Repo:        repo,
		Bus:         eventBus,
		Stats:       service.NewDashboardService(repo),
		PollTimeout: time.Duration(cfg.WorkerPollSeconds) * time.Second,
		Logger:      logger,
	})
	processor.Run(ctx)
}
