package service

import (
	"context"

	"bridge-go/internal/model"
	"bridge-go/internal/repository"
	"bridge-go/pkg/events"
)

// AnalyticsService persists search events consumed from Kafka.
type AnalyticsService struct {
	searchLogRepo repository.SearchLogRepository
}

// NewAnalyticsService creates a new AnalyticsService instance.
func NewAnalyticsService(searchLogRepo repository.SearchLogRepository) *AnalyticsService {
	return &AnalyticsService{searchLogRepo: searchLogRepo}
}

// Process writes one search event to the analytics table.
func (s *AnalyticsService) Process(ctx context.Context, event events.SearchEvent) error {
	entry := &model.SearchLog{
		Query:       event.Query,
		Category:    event.Category,
		Provider:    event.Provider,
		ResultCount: event.ResultCount,
		CreatedAt:   event.OccurredAt,
	}
	return s.searchLogRepo.Create(entry)
}
