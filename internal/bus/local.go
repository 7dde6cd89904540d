package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

// LocalBus is an in-process EventBus used when Redis is not configured.
// Fan-out is limited to subscribers within the same process.
type LocalBus struct {
	mu          sync.Mutex
	subscribers map[chan domain.Event]struct{}
}

func NewLocalBus() *LocalBus {
	return &LocalBus{
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

func (b *LocalBus) EmitMessageReceived(ctx context.Context, messageID, sender, text string) error {
	return b.publish(ctx, domain.EventMessageReceived, domain.MessageReceivedEvent{
		MessageID: messageID,
		Sender:    sender,
		Text:      text,
		Status:    domain.StatusPendingAnalysis,
	})
}

func (b *LocalBus) EmitMessageAnalyzed(ctx context.Context, messageID string, analysis domain.Analysis) error {
	return b.publish(ctx, domain.EventMessageAnalyzed, domain.MessageAnalyzedEvent{
		MessageID: messageID,
		Sentiment: analysis.Sentiment,
		Topic:     analysis.Topic,
		Summary:   analysis.Summary,
		Status:    domain.StatusAnalyzed,
	})
}

func (b *LocalBus) EmitStatsUpdated(ctx context.Context, stats domain.DashboardStats) error {
	return b.publish(ctx, domain.EventStatsUpdated, stats)
}

func (b *LocalBus) EmitError(ctx context.Context, message string) error {
	return b.publish(ctx, domain.EventError, domain.ErrorEvent{Message: message})
}

func (b *LocalBus) publish(_ context.Context, name domain.EventName, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", name, err)
	}
	event := domain.Event{Name: name, Data: data}

	b.mu.Lock()
	defer b.mu.Unlock()
	for subscriber := range b.subscribers {
		// A slow subscriber drops events instead of blocking the publisher.
		select {
		case subscriber <- event:
		default:
		}
	}
	return nil
}

func (b *LocalBus) Subscribe(_ context.Context) (<-chan domain.Event, func(), error) {
	events := make(chan domain.Event, 64)

	b.mu.Lock()
	b.subscribers[events] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, events)
			b.mu.Unlock()
			close(events)
		})
	}
	return events, cancel, nil
}
