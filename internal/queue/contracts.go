package queue

import (
	"context"
	"time"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

// JobQueue is the durable FIFO buffer between ingestion and the worker.
//
// Enqueue failures are logged by implementations; callers may ignore the
// returned error (queue unavailability drops the job, the persisted record
// stays pending). Dequeue blocks up to timeout and returns (nil, nil) when
// nothing arrived; the worker uses that as its shutdown checkpoint. Clear
// exists for test isolation only.
type JobQueue interface {
	Enqueue(ctx context.Context, job domain.QueueJob) error
	Dequeue(ctx context.Context, timeout time.Duration) (*domain.QueueJob, error)
	Size(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}
