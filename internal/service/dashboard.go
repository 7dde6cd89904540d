package service

import (
	"context"
	"fmt"
	"math"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
	"github.com/cafesv/whatsapp-sentiment-back/internal/repository"
)

// DashboardService derives the aggregated views served to the dashboard and
// broadcast as stats_updated.
type DashboardService struct {
	repo repository.MessagesRepository
}

func NewDashboardService(repo repository.MessagesRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

func (s *DashboardService) Statistics(ctx context.Context) (domain.DashboardStats, error) {
	total, err := s.repo.TotalCount(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("total count: %w", err)
	}

	counts, err := s.repo.SentimentCounts(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("sentiment counts: %w", err)
	}
	analyzed := counts[domain.SentimentPositive] + counts[domain.SentimentNegative] + counts[domain.SentimentNeutral]

	topTopic := "N/A"
	topics, err := s.repo.TopTopics(ctx, 1)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("top topics: %w", err)
	}
	if len(topics) > 0 {
		topTopic = topics[0].Topic
	}

	return domain.DashboardStats{
		TotalMessages: total,
		PositivePct:   percentage(counts[domain.SentimentPositive], analyzed),
		NegativePct:   percentage(counts[domain.SentimentNegative], analyzed),
		TopTopic:      topTopic,
	}, nil
}

func (s *DashboardService) SentimentDistribution(ctx context.Context) (domain.SentimentDistribution, error) {
	counts, err := s.repo.SentimentCounts(ctx)
	if err != nil {
		return domain.SentimentDistribution{}, fmt.Errorf("sentiment counts: %w", err)
	}
	analyzed := counts[domain.SentimentPositive] + counts[domain.SentimentNegative] + counts[domain.SentimentNeutral]

	return domain.SentimentDistribution{
		Positive: percentage(counts[domain.SentimentPositive], analyzed),
		Negative: percentage(counts[domain.SentimentNegative], analyzed),
		Neutral:  percentage(counts[domain.SentimentNeutral], analyzed),
	}, nil
}

func (s *DashboardService) TopTopics(ctx context.Context, limit int) ([]domain.TopicCount, error) {
	return s.repo.TopTopics(ctx, limit)
}

func (s *DashboardService) RecentMessages(ctx context.Context, limit int) ([]domain.Message, error) {
	return s.repo.Recent(ctx, limit)
}

func percentage(count, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
