package service

import (
	"context"
	"fmt"

	"github.com/jengzang/visits-backend-go/internal/ingest"
	"github.com/jengzang/visits-backend-go/internal/models"
	"github.com/jengzang/visits-backend-go/internal/query"
	"github.com/jengzang/visits-backend-go/internal/repository"
	"github.com/jengzang/visits-backend-go/internal/stats"
)

// VisitService handles business logic for visit records
type VisitService struct {
	store  *repository.VisitStore
	engine *query.Engine
}

// NewVisitService creates a new visit service
func NewVisitService(store *repository.VisitStore, engine *query.Engine) *VisitService {
	return &VisitService{
		store:  store,
		engine: engine,
	}
}

// Snapshot returns the published record set
func (s *VisitService) Snapshot() (*models.RecordSet, error) {
	return s.store.Current()
}

// GetVisits filters and paginates visits. The record set the page was cut
// from is returned with it.
func (s *VisitService) GetVisits(filter models.VisitFilter) (*models.QueryResult, *models.RecordSet, error) {
	rs, err := s.store.Current()
	if err != nil {
		return nil, nil, err
	}

	result, err := s.engine.Query(rs, filter)
	if err != nil {
		return nil, rs, fmt.Errorf("failed to query visits: %w", err)
	}
	return result, rs, nil
}

// GetVisitByIndex returns the record at position i of the published set
func (s *VisitService) GetVisitByIndex(i int) (*models.VisitRecord, *models.RecordSet, error) {
	rs, err := s.store.Current()
	if err != nil {
		return nil, nil, err
	}

	record, ok := rs.At(i)
	if !ok {
		return nil, rs, fmt.Errorf("%w: visit %d (have %d)", models.ErrRecordNotFound, i, rs.Len())
	}
	return &record, rs, nil
}

// GetPlaces returns the distinct places, sorted
func (s *VisitService) GetPlaces() ([]string, *models.RecordSet, error) {
	rs, err := s.store.Current()
	if err != nil {
		return nil, nil, err
	}
	return stats.Places(rs), rs, nil
}

// GetLoadReport returns the report of the published set
func (s *VisitService) GetLoadReport() (*models.LoadReport, error) {
	rs, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	report := rs.Report
	return &report, nil
}

// GetStructure inspects the raw source
func (s *VisitService) GetStructure(ctx context.Context, sampleRows int) (*models.Structure, error) {
	structure, err := ingest.Inspect(ctx, s.store.Source(), sampleRows)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect source: %w", err)
	}
	return structure, nil
}

// Reload reloads the source and publishes the new set
func (s *VisitService) Reload(ctx context.Context) (*models.RecordSet, error) {
	rs, err := s.store.Reload(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reload visits: %w", err)
	}
	return rs, nil
}
