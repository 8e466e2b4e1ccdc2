package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jengzang/visits-backend-go/internal/ingest"
	"github.com/jengzang/visits-backend-go/internal/metrics"
	"github.com/jengzang/visits-backend-go/internal/models"
	"github.com/jengzang/visits-backend-go/internal/notify"
)

// RecordLoader builds a record set from a source
type RecordLoader interface {
	Load(ctx context.Context, src ingest.Source) (*models.RecordSet, error)
}

// VisitStore publishes the current record set. Readers get an immutable
// snapshot; a reload swaps the pointer and never mutates a published set.
type VisitStore struct {
	source    ingest.Source
	loader    RecordLoader
	publisher notify.Publisher
	logger    *slog.Logger

	current atomic.Pointer[models.RecordSet]

	mu      sync.Mutex // serializes reloads and guards lastErr
	lastErr error
}

// NewVisitStore creates a store. Nothing is loaded until Reload is called.
func NewVisitStore(source ingest.Source, loader RecordLoader, publisher notify.Publisher, logger *slog.Logger) *VisitStore {
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VisitStore{
		source:    source,
		loader:    loader,
		publisher: publisher,
		logger:    logger,
	}
}

// Source returns the configured source
func (s *VisitStore) Source() ingest.Source {
	return s.source
}

// Current returns the published record set. Before the first successful
// load it fails with models.ErrDataUnavailable, carrying the last load error.
func (s *VisitStore) Current() (*models.RecordSet, error) {
	if rs := s.current.Load(); rs != nil {
		return rs, nil
	}

	s.mu.Lock()
	lastErr := s.lastErr
	s.mu.Unlock()

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, lastErr)
	}
	return nil, fmt.Errorf("%w: no data loaded", models.ErrDataUnavailable)
}

// Reload loads the source and publishes the result. On failure the
// previously published set stays in place.
func (s *VisitStore) Reload(ctx context.Context) (*models.RecordSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs, err := s.loader.Load(ctx, s.source)
	if err != nil {
		s.lastErr = err
		s.logger.Error("failed to reload visits", "source", s.source.Describe(), "error", err)
		return nil, err
	}

	s.lastErr = nil
	prev := s.current.Swap(rs)
	metrics.RecordsPublished.Set(float64(rs.Len()))

	attrs := []any{"record_set", rs.ID, "records", rs.Len()}
	if prev != nil {
		attrs = append(attrs, "previous", prev.ID, "previous_records", prev.Len())
	}
	s.logger.Info("record set published", attrs...)

	if err := s.publisher.PublishReload(ctx, rs); err != nil {
		s.logger.Warn("failed to publish reload event", "record_set", rs.ID, "error", err)
	}
	return rs, nil
}
