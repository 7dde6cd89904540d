package queue

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
	Queue    string
}

// RedisQueue implements JobQueue on a redis list. Jobs are pushed to the head
// and popped from the tail, yielding strict FIFO by submission time.
type RedisQueue struct {
	client *redis.Client
	queue  string
	logger *slog.Logger
}

func NewRedisQueue(ctx context.Context, cfg RedisConfig, logger *slog.Logger) (*RedisQueue, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if cfg.Queue == "" {
		cfg.Queue = "message_queue"
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

	return &RedisQueue{client: client, queue: cfg.Queue, logger: logger}, nil
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

func (q *RedisQueue) Enqueue(ctx context.Context, job domain.QueueJob) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode queue job: %w", err)
	}
	if err := q.client.LPush(ctx, q.queue, encoded).Err(); err != nil {
		q.logger.Error("enqueue failed", "message_id", job.MessageID, "error", err)
		return fmt.Errorf("lpush %s: %w", q.queue, err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.QueueJob, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("brpop %s: %w", q.queue, err)
	}
	// BRPOP replies [key, value].
	if len(result) != 2 {
		return nil, fmt.Errorf("brpop %s: unexpected reply of %d elements", q.queue, len(result))
	}

	var job domain.QueueJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("decode queue job: %w", err)
	}
	return &job, nil
}

func (q *RedisQueue) Size(ctx context.Context) (int64, error) {
	size, err := q.client.LLen(ctx, q.queue).Result()
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", q.queue, err)
	}
	return size, nil
}

func (q *RedisQueue) Clear(ctx context.Context) error {
	if err := q.client.Del(ctx, q.queue).Err(); err != nil {
		return fmt.Errorf("del %s: %w", q.queue, err)
	}
	q.logger.Warn("queue cleared", "queue", q.queue)
	return nil
}
