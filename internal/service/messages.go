package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cafesv/whatsapp-sentiment-back/internal/bus"
	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
	"github.com/cafesv/whatsapp-sentiment-back/internal/queue"
	"github.com/cafesv/whatsapp-sentiment-back/internal/repository"
)

// MessageService handles inbound message ingestion: persist the raw record,
// hand a job to the queue and acknowledge immediately, without waiting for
// enrichment.
type MessageService struct {
	repo   repository.MessagesRepository
	queue  queue.JobQueue
	bus    bus.EventBus
	logger *slog.Logger
}

func NewMessageService(
	repo repository.MessagesRepository,
	jobQueue queue.JobQueue,
	eventBus bus.EventBus,
	logger *slog.Logger,
) *MessageService {
	return &MessageService{repo: repo, queue: jobQueue, bus: eventBus, logger: logger}
}

// Receive persists the message, enqueues it for analysis and emits
// message_received. The record is saved before the job is enqueued: the
// record is the durable anchor, the job is disposable. Queue and bus
// failures are logged, not returned; queue unavailability drops the job and
// leaves the record pending.
func (s *MessageService) Receive(ctx context.Context, text, sender, messageSID string) (string, error) {
	message := domain.NewMessage(text, sender, messageSID)
	messageID, err := s.repo.Save(ctx, message)
	if err != nil {
		return "", fmt.Errorf("save message: %w", err)
	}

	job := domain.QueueJob{
		MessageID: messageID,
		Text:      message.Text,
		Sender:    message.Sender,
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Error("enqueue failed, message stays pending",
			"message_id", messageID, "error", err)
	} else {
		s.logger.Info("message enqueued for analysis", "message_id", messageID)
	}

	if err := s.bus.EmitMessageReceived(ctx, messageID, message.Sender, message.Text); err != nil {
		s.logger.Warn("message_received emit failed", "message_id", messageID, "error", err)
	}

	return messageID, nil
}

// QueueSize reports pending jobs; approximate under concurrent writers.
func (s *MessageService) QueueSize(ctx context.Context) (int64, error) {
	return s.queue.Size(ctx)
}
