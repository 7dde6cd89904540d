package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache stores analysis results in redis with per-entry expiry.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisCache(ctx context.Context, cfg RedisConfig, logger *slog.Logger) (*RedisCache, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisCache{client: client, logger: logger}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, fingerprint string) (domain.Analysis, bool) {
	raw, err := c.client.Get(ctx, analysisKey(fingerprint)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Error("cache get failed", "error", err)
		}
		return domain.Analysis{}, false
	}

	var analysis domain.Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		c.logger.Error("cache entry corrupted", "error", err)
		return domain.Analysis{}, false
	}
	return analysis, true
}

func (c *RedisCache) Set(ctx context.Context, fingerprint string, analysis domain.Analysis, ttl time.Duration) {
	encoded, err := json.Marshal(analysis)
	if err != nil {
		c.logger.Error("cache encode failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, analysisKey(fingerprint), encoded, ttl).Err(); err != nil {
		c.logger.Error("cache set failed", "error", err)
	}
}
