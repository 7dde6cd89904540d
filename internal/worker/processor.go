package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/cafesv/whatsapp-sentiment-back/internal/bus"
	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
	"github.com/cafesv/whatsapp-sentiment-back/internal/queue"
	"github.com/cafesv/whatsapp-sentiment-back/internal/repository"
)

// DefaultPollTimeout bounds how long the loop blocks on the queue, so a
// shutdown signal is observed within one poll period even while idle.
const DefaultPollTimeout = 5 * time.Second

// Analyzer produces the analysis triple for a message text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (domain.Analysis, error)
}

// StatsSource recomputes the dashboard snapshot after each analyzed message.
type StatsSource interface {
	Statistics(ctx context.Context) (domain.DashboardStats, error)
}

type Dependencies struct {
	Queue       queue.JobQueue
	Analyzer    Analyzer
	Repo        repository.MessagesRepository
	Bus         bus.EventBus
	Stats       StatsSource // optional
	PollTimeout time.Duration
	Logger      *slog.Logger
}

// Processor is the single long-running consumer: it pops jobs, runs the
// analysis, persists the result and triggers notification events. One job is
// fully processed before the next dequeue; there is never more than one job
// in flight per instance.
type Processor struct {
	queue       queue.JobQueue
	analyzer    Analyzer
	repo        repository.MessagesRepository
	bus         bus.EventBus
	stats       StatsSource
	pollTimeout time.Duration
	logger      *slog.Logger
}

func NewProcessor(deps Dependencies) *Processor {
	if deps.PollTimeout <= 0 {
		deps.PollTimeout = DefaultPollTimeout
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Processor{
		queue:       deps.Queue,
		analyzer:    deps.Analyzer,
		repo:        deps.Repo,
		bus:         deps.Bus,
		stats:       deps.Stats,
		pollTimeout: deps.PollTimeout,
		logger:      deps.Logger,
	}
}

// Run blocks until ctx is canceled. Cancellation is cooperative: it is
// checked before each dequeue, and an in-flight job always runs to
// completion before the next check.
func (p *Processor) Run(ctx context.Context) {
	p.logger.Info("worker listening for jobs", "poll_timeout", p.pollTimeout)

	for {
		if ctx.Err() != nil {
			p.logger.Info("worker stopped")
			return
		}

		job, err := p.queue.Dequeue(ctx, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("worker stopped")
				return
			}
			p.logger.Error("dequeue failed", "error", err)
			p.pause(ctx, 2*time.Second)
			continue
		}
		if job == nil {
			// Timeout with an empty queue; loop back to the shutdown check.
			continue
		}

		// The job must finish even if shutdown is signaled mid-flight.
		p.process(context.WithoutCancel(ctx), job)
	}
}

// process runs one job to completion. Every failure is handled here: the
// job is dropped, never retried or requeued, and the record stays pending.
func (p *Processor) process(ctx context.Context, job *domain.QueueJob) {
	p.logger.Info("processing message", "message_id", job.MessageID, "sender", job.Sender)

	analysis, err := p.analyzer.Analyze(ctx, job.Text)
	if err != nil {
		p.logger.Error("dropping message, analysis failed",
			"message_id", job.MessageID, "error", err)
		if emitErr := p.bus.EmitError(ctx, "analysis failed for message "+job.MessageID); emitErr != nil {
			p.logger.Warn("error emit failed", "message_id", job.MessageID, "error", emitErr)
		}
		return
	}

	if err := p.repo.UpdateAnalysis(ctx, job.MessageID, analysis); err != nil {
		p.logger.Error("dropping message, persist failed",
			"message_id", job.MessageID, "error", err)
		return
	}

	p.logger.Info("message analyzed",
		"message_id", job.MessageID,
		"sentimiento", analysis.Sentiment,
		"tema", analysis.Topic)

	// Broadcast failures never undo persistence; they are logged and the
	// loop moves on.
	if err := p.bus.EmitMessageAnalyzed(ctx, job.MessageID, analysis); err != nil {
		p.logger.Warn("message_analyzed emit failed", "message_id", job.MessageID, "error", err)
	}

	if p.stats == nil {
		return
	}
	stats, err := p.stats.Statistics(ctx)
	if err != nil {
		p.logger.Warn("stats recompute failed", "error", err)
		return
	}
	if err := p.bus.EmitStatsUpdated(ctx, stats); err != nil {
		p.logger.Warn("stats_updated emit failed", "error", err)
	}
}

func (p *Processor) pause(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
