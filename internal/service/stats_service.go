package service

import (
	"github.com/jengzang/visits-backend-go/internal/models"
	"github.com/jengzang/visits-backend-go/internal/repository"
	"github.com/jengzang/visits-backend-go/internal/stats"
)

// StatsService handles business logic for visit statistics
type StatsService struct {
	store    *repository.VisitStore
	calendar stats.DayCalendar
}

// NewStatsService creates a new stats service. calendar may be nil.
func NewStatsService(store *repository.VisitStore, calendar stats.DayCalendar) *StatsService {
	return &StatsService{
		store:    store,
		calendar: calendar,
	}
}

// GetStatistics summarizes the published record set
func (s *StatsService) GetStatistics() (*models.Statistics, *models.RecordSet, error) {
	rs, err := s.store.Current()
	if err != nil {
		return nil, nil, err
	}
	summary := stats.Summarize(rs)
	return &summary, rs, nil
}

// GetDailyCounts returns per-day visit counts
func (s *StatsService) GetDailyCounts() ([]models.DailyCount, *models.RecordSet, error) {
	rs, err := s.store.Current()
	if err != nil {
		return nil, nil, err
	}
	return stats.Daily(rs, s.calendar), rs, nil
}
