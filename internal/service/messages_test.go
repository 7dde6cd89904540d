package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
	"github.com/cafesv/whatsapp-sentiment-back/internal/repository"
)

type fakeQueue struct {
	jobs       []domain.QueueJob
	enqueueErr error
}

func (q *fakeQueue) Enqueue(_ context.Context, job domain.QueueJob) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) Dequeue(_ context.Context, _ time.Duration) (*domain.QueueJob, error) {
	if len(q.jobs) == 0 {
		return nil, nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return &job, nil
}

func (q *fakeQueue) Size(_ context.Context) (int64, error) { return int64(len(q.jobs)), nil }

func (q *fakeQueue) Clear(_ context.Context) error {
	q.jobs = nil
	return nil
}

type recordingBus struct {
	received []domain.MessageReceivedEvent
	analyzed []domain.MessageAnalyzedEvent
	stats    []domain.DashboardStats
	errs     []string

	emitErr error
}

func (b *recordingBus) EmitMessageReceived(_ context.Context, messageID, sender, text string) error {
	if b.emitErr != nil {
		return b.emitErr
	}
	b.received = append(b.received, domain.MessageReceivedEvent{
		MessageID: messageID,
		Sender:    sender,
		Text:      text,
		Status:    domain.StatusPendingAnalysis,
	})
	return nil
}

func (b *recordingBus) EmitMessageAnalyzed(_ context.Context, messageID string, analysis domain.Analysis) error {
	if b.emitErr != nil {
		return b.emitErr
	}
	b.analyzed = append(b.analyzed, domain.MessageAnalyzedEvent{
		MessageID: messageID,
		Sentiment: analysis.Sentiment,
		Topic:     analysis.Topic,
		Summary:   analysis.Summary,
		Status:    domain.StatusAnalyzed,
	})
	return nil
}

func (b *recordingBus) EmitStatsUpdated(_ context.Context, stats domain.DashboardStats) error {
	if b.emitErr != nil {
		return b.emitErr
	}
	b.stats = append(b.stats, stats)
	return nil
}

func (b *recordingBus) EmitError(_ context.Context, message string) error {
	b.errs = append(b.errs, message)
	return nil
}

func TestReceivePersistsEnqueuesAndEmits(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryMessagesRepository()
	q := &fakeQueue{}
	b := &recordingBus{}
	s := NewMessageService(repo, q, b, slog.Default())

	id, err := s.Receive(ctx, "El café estaba frío", "whatsapp:+50370000000", "SM1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// Record exists before the job references it.
	stored, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, stored.Analyzed())

	require.Len(t, q.jobs, 1)
	assert.Equal(t, id, q.jobs[0].MessageID)
	assert.Equal(t, "+50370000000", q.jobs[0].Sender)

	require.Len(t, b.received, 1)
	assert.Equal(t, domain.StatusPendingAnalysis, b.received[0].Status)
}

// Queue unavailability drops the job silently: the message is still saved
// and acknowledged, the record just stays pending.
func TestReceiveIgnoresEnqueueFailure(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryMessagesRepository()
	q := &fakeQueue{enqueueErr: errors.New("redis down")}
	b := &recordingBus{}
	s := NewMessageService(repo, q, b, slog.Default())

	id, err := s.Receive(ctx, "hola", "+50370000000", "")
	require.NoError(t, err)

	_, err = repo.Get(ctx, id)
	assert.NoError(t, err)
	assert.Empty(t, q.jobs)
}

func TestReceiveIgnoresEmitFailure(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryMessagesRepository()
	q := &fakeQueue{}
	b := &recordingBus{emitErr: errors.New("bus down")}
	s := NewMessageService(repo, q, b, slog.Default())

	_, err := s.Receive(ctx, "hola", "+50370000000", "")
	assert.NoError(t, err)
	assert.Len(t, q.jobs, 1)
}

func TestReceiveSaveFailurePropagates(t *testing.T) {
	// A nil repository method cannot be faked on the memory repo, so use a
	// failing wrapper.
	s := NewMessageService(failingRepo{}, &fakeQueue{}, &recordingBus{}, slog.Default())

	_, err := s.Receive(context.Background(), "hola", "+503", "")
	assert.ErrorContains(t, err, "save message")
}

type failingRepo struct{}

func (failingRepo) Save(context.Context, *domain.Message) (string, error) {
	return "", errors.New("store unavailable")
}

func (failingRepo) UpdateAnalysis(context.Context, string, domain.Analysis) error {
	return errors.New("store unavailable")
}

func (failingRepo) Get(context.Context, string) (*domain.Message, error) {
	return nil, errors.New("store unavailable")
}

func (failingRepo) Recent(context.Context, int) ([]domain.Message, error) {
	return nil, errors.New("store unavailable")
}

func (failingRepo) TotalCount(context.Context) (int64, error) {
	return 0, errors.New("store unavailable")
}

func (failingRepo) SentimentCounts(context.Context) (map[domain.Sentiment]int64, error) {
	return nil, errors.New("store unavailable")
}

func (failingRepo) TopTopics(context.Context, int) ([]domain.TopicCount, error) {
	return nil, errors.New("store unavailable")
}
