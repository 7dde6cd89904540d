package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// RedisBus fans events out through redis pub/sub, so subscribers on other
// processes (api instances behind a load balancer, the standalone worker)
// all receive every publish.
type RedisBus struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisBus(ctx context.Context, cfg RedisConfig, logger *slog.Logger) (*RedisBus, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if cfg.Channel == "" {
		cfg.Channel = "dashboard"
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

	return &RedisBus{client: client, channel: cfg.Channel, logger: logger}, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}

func (b *RedisBus) EmitMessageReceived(ctx context.Context, messageID, sender, text string) error {
	return b.publish(ctx, domain.EventMessageReceived, domain.MessageReceivedEvent{
		MessageID: messageID,
		Sender:    sender,
		Text:      text,
		Status:    domain.StatusPendingAnalysis,
	})
}

func (b *RedisBus) EmitMessageAnalyzed(ctx context.Context, messageID string, analysis domain.Analysis) error {
	return b.publish(ctx, domain.EventMessageAnalyzed, domain.MessageAnalyzedEvent{
		MessageID: messageID,
		Sentiment: analysis.Sentiment,
		Topic:     analysis.Topic,
		Summary:   analysis.Summary,
		Status:    domain.StatusAnalyzed,
	})
}

func (b *RedisBus) EmitStatsUpdated(ctx context.Context, stats domain.DashboardStats) error {
	return b.publish(ctx, domain.EventStatsUpdated, stats)
}

func (b *RedisBus) EmitError(ctx context.Context, message string) error {
	b.logger.Warn("emitting error event", "message", message)
	return b.publish(ctx, domain.EventError, domain.ErrorEvent{Message: message})
}

func (b *RedisBus) publish(ctx context.Context, name domain.EventName, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", name, err)
	}
	envelope, err := json.Marshal(domain.Event{Name: name, Data: data})
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", name, err)
	}
	if err := b.client.Publish(ctx, b.channel, envelope).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", name, err)
	}
	return nil
}

// Subscribe joins the dashboard channel. Malformed envelopes are logged and
// skipped so one bad publish cannot wedge a subscriber.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan domain.Event, func(), error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	events := make(chan domain.Event, 64)
	go func() {
		defer close(events)
		for message := range pubsub.Channel() {
			var event domain.Event
			if err := json.Unmarshal([]byte(message.Payload), &event); err != nil {
				b.logger.Error("malformed bus event", "error", err)
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		_ = pubsub.Close()
	}
	return events, cancel, nil
}
