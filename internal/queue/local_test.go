package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

func TestLocalQueueFIFO(t *testing.T) {
	ctx := context.Background()
	q := NewLocalQueue(16)

	for i := 0; i < 5; i++ {
		job := domain.QueueJob{
			MessageID: fmt.Sprintf("msg-%d", i),
			Text:      fmt.Sprintf("texto %d", i),
			Sender:    "+50370000000",
		}
		require.NoError(t, q.Enqueue(ctx, job))
	}

	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	for i := 0; i < 5; i++ {
		job, err := q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, fmt.Sprintf("msg-%d", i), job.MessageID)
	}
}

func TestLocalQueueDequeueTimeout(t *testing.T) {
	q := NewLocalQueue(4)

	started := time.Now()
	job, err := q.Dequeue(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, job)
	assert.GreaterOrEqual(t, time.Since(started), 20*time.Millisecond)
}

func TestLocalQueueDequeueCanceled(t *testing.T) {
	q := NewLocalQueue(4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Dequeue(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalQueueEnqueueFullDropsJob(t *testing.T) {
	ctx := context.Background()
	q := NewLocalQueue(1)

	require.NoError(t, q.Enqueue(ctx, domain.QueueJob{MessageID: "a"}))
	assert.ErrorIs(t, q.Enqueue(ctx, domain.QueueJob{MessageID: "b"}), ErrQueueFull)

	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestLocalQueueClear(t *testing.T) {
	ctx := context.Background()
	q := NewLocalQueue(8)

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(ctx, domain.QueueJob{MessageID: fmt.Sprintf("m%d", i)}))
	}
	require.NoError(t, q.Clear(ctx))

	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)
}
