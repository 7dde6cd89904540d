package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/cafesv/whatsapp-sentiment-back/internal/ai"
	"github.com/cafesv/whatsapp-sentiment-back/internal/bus"
	"github.com/cafesv/whatsapp-sentiment-back/internal/cache"
	"github.com/cafesv/whatsapp-sentiment-back/internal/config"
	httpserver "github.com/cafesv/whatsapp-sentiment-back/internal/http"
	"github.com/cafesv/whatsapp-sentiment-back/internal/http/handlers"
	"github.com/cafesv/whatsapp-sentiment-back/internal/queue"
	"github.com/cafesv/whatsapp-sentiment-back/internal/repository"
	"github.com/cafesv/whatsapp-sentiment-back/internal/service"
	"github.com/cafesv/whatsapp-sentiment-back/internal/websocket"
	"github.com/cafesv/whatsapp-sentiment-back/internal/worker"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, repoCloser := setupRepository(ctx, cfg, logger)
	defer repoCloser()

	jobQueue, queueCloser := setupQueue(ctx, cfg, logger)
	defer queueCloser()

	analysisCache, cacheCloser := setupCache(ctx, cfg, logger)
	defer cacheCloser()

	eventBus, subscriber, busCloser := setupBus(ctx, cfg, logger)
	defer busCloser()

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

	messages := service.NewMessageService(repo, jobQueue, eventBus, logger)
	dashboard := service.NewDashboardService(repo)
	api := handlers.NewAPI(messages, dashboard, cfg.QueueName)

	hub := websocket.NewHub(subscriber, logger)
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("websocket hub failed", "error", err)
		}
	}()

	handler := httpserver.NewRouter(httpserver.RouterDependencies{
		API:            api,
		WebSocket:      websocket.Handler(hub, cfg.CORSAllowedOrigins, logger),
		Logger:         logger,
		AuthToken:      cfg.AuthToken,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	if cfg.WorkerEnabled {
		processor := worker.NewProcessor(worker.Dependencies{
			Queue:       jobQueue,
			Analyzer:    analysis,
			Repo:        repo,
			Bus:         eventBus,
			Stats:       dashboard,
			PollTimeout: time.Duration(cfg.WorkerPollSeconds) * time.Second,
			Logger:      logger,
		})
		go processor.Run(ctx)
		logger.Info("embedded worker started")
	} else {
		logger.Info("worker disabled, run cmd/worker separately")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("api listening", "port", cfg.Port)
		errChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func setupRepository(
	ctx context.Context,
	cfg config.Config,
	logger *slog.Logger,
) (repository.MessagesRepository, func()) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not configured, using in-memory repository")
		return repository.NewMemoryMessagesRepository(), func() {}
	}

	if err := repository.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		logger.Error("migrations failed", "error", err)
	}

	pgRepo, err := repository.NewPostgresMessagesRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("postgres init failed, fallback to memory", "error", err)
		return repository.NewMemoryMessagesRepository(), func() {}
	}
	logger.Info("postgres repository initialized")
	return pgRepo, pgRepo.Close
}

func setupQueue(
	ctx context.Context,
	cfg config.Config,
	logger *slog.Logger,
) (queue.JobQueue, func()) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not configured, using in-process queue")
		return queue.NewLocalQueue(0), func() {}
	}

	redisQueue, err := queue.NewRedisQueue(ctx, queue.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Queue:    cfg.QueueName,
	}, logger)
	if err != nil {
		logger.Error("redis queue init failed, fallback to in-process queue", "error", err)
		return queue.NewLocalQueue(0), func() {}
	}
	logger.Info("redis queue initialized", "queue", cfg.QueueName)
	return redisQueue, func() { _ = redisQueue.Close() }
}

func setupCache(
	ctx context.Context,
	cfg config.Config,
	logger *slog.Logger,
) (cache.AnalysisCache, func()) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not configured, using in-memory cache")
		return cache.NewMemoryCache(0), func() {}
	}

	redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.Error("redis cache init failed, fallback to in-memory cache", "error", err)
		return cache.NewMemoryCache(0), func() {}
	}
	return redisCache, func() { _ = redisCache.Close() }
}

func setupBus(
	ctx context.Context,
	cfg config.Config,
	logger *slog.Logger,
) (bus.EventBus, bus.Subscriber, func()) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not configured, events stay in-process")
		localBus := bus.NewLocalBus()
		return localBus, localBus, func() {}
	}

	redisBus, err := bus.NewRedisBus(ctx, bus.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Channel:  cfg.DashboardChannel,
	}, logger)
	if err != nil {
		logger.Error("redis bus init failed, events stay in-process", "error", err)
		localBus := bus.NewLocalBus()
		return localBus, localBus, func() {}
	}
	logger.Info("redis event bus initialized", "channel", cfg.DashboardChannel)
	return redisBus, redisBus, func() { _ = redisBus.Close() }
}
