package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

var ErrNotFound = errors.New("resource not found")

// MessagesRepository abstracts message persistence and the dashboard read
// queries. UpdateAnalysis applies the four analysis fields, including the
// server-assigned timestamp, as one atomic write: a reader sees a record
// either fully pending or fully analyzed.
type MessagesRepository interface {
	Save(ctx context.Context, message *domain.Message) (string, error)
	UpdateAnalysis(ctx context.Context, messageID string, analysis domain.Analysis) error
	Get(ctx context.Context, messageID string) (*domain.Message, error)
	Recent(ctx context.Context, limit int) ([]domain.Message, error)

	TotalCount(ctx context.Context) (int64, error)
	SentimentCounts(ctx context.Context) (map[domain.Sentiment]int64, error)
	TopTopics(ctx context.Context, limit int) ([]domain.TopicCount, error)
}

// MemoryMessagesRepository stores messages in memory for local development
// and tests.
type MemoryMessagesRepository struct {
	mu       sync.RWMutex
	messages map[string]*domain.Message
}

func NewMemoryMessagesRepository() *MemoryMessagesRepository {
	return &MemoryMessagesRepository{
		messages: make(map[string]*domain.Message),
	}
}

func (r *MemoryMessagesRepository) Save(_ context.Context, message *domain.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	r.messages[message.ID] = cloneMessage(message)
	return message.ID, nil
}

func (r *MemoryMessagesRepository) UpdateAnalysis(
	_ context.Context,
	messageID string,
	analysis domain.Analysis,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, ok := r.messages[messageID]
	if !ok {
		return ErrNotFound
	}

	now := time.Now().UTC()
	message.Sentiment = analysis.Sentiment
	message.Topic = analysis.Topic
	message.Summary = analysis.Summary
	message.AnalyzedAt = &now
	return nil
}

func (r *MemoryMessagesRepository) Get(_ context.Context, messageID string) (*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	message, ok := r.messages[messageID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneMessage(message), nil
}

func (r *MemoryMessagesRepository) Recent(_ context.Context, limit int) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	messages := make([]domain.Message, 0, len(r.messages))
	for _, message := range r.messages {
		messages = append(messages, *cloneMessage(message))
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].ReceivedAt.After(messages[j].ReceivedAt)
	})
	if len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

func (r *MemoryMessagesRepository) TotalCount(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.messages)), nil
}

func (r *MemoryMessagesRepository) SentimentCounts(_ context.Context) (map[domain.Sentiment]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.Sentiment]int64)
	for _, message := range r.messages {
		if message.Analyzed() {
			counts[message.Sentiment]++
		}
	}
	return counts, nil
}

func (r *MemoryMessagesRepository) TopTopics(_ context.Context, limit int) ([]domain.TopicCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	counts := make(map[string]int64)
	for _, message := range r.messages {
		if message.Analyzed() {
			counts[message.Topic]++
		}
	}

	topics := make([]domain.TopicCount, 0, len(counts))
	for topic, count := range counts {
		topics = append(topics, domain.TopicCount{Topic: topic, Count: count})
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		return topics[i].Topic < topics[j].Topic
	})
	if len(topics) > limit {
		topics = topics[:limit]
	}
	return topics, nil
}

func cloneMessage(message *domain.Message) *domain.Message {
	clone := *message
	if message.AnalyzedAt != nil {
		at := *message.AnalyzedAt
		clone.AnalyzedAt = &at
	}
	return &clone
}
