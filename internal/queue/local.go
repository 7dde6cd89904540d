package queue

import (
	"context"
	"errors"
	"time"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

var ErrQueueFull = errors.New("local queue is full")

// LocalQueue is a channel-backed fallback used when Redis is not configured.
// It preserves the JobQueue semantics within a single process.
type LocalQueue struct {
	ch chan domain.QueueJob
}

func NewLocalQueue(bufferSize int) *LocalQueue {
	if bufferSize <= 0 {
		bufferSize = 512
	}
	return &LocalQueue{ch: make(chan domain.QueueJob, bufferSize)}
}

func (q *LocalQueue) Enqueue(_ context.Context, job domain.QueueJob) error {
	select {
	case q.ch <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *LocalQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.QueueJob, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case job := <-q.ch:
		return &job, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *LocalQueue) Size(_ context.Context) (int64, error) {
	return int64(len(q.ch)), nil
}

func (q *LocalQueue) Clear(_ context.Context) error {
	for {
		select {
		case <-q.ch:
		default:
			return nil
		}
	}
}
