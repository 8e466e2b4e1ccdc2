// Package query filters and paginates a loaded record set.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/visits-backend-go/internal/models"
	"github.com/jengzang/visits-backend-go/internal/spatial"
)

// DefaultMaxLimit caps the page size when none is configured
const DefaultMaxLimit = 1000

// DayCalendar reports whether a timestamp falls on a business day
type DayCalendar interface {
	Contains(t time.Time) bool
}

// Engine evaluates VisitFilters against a RecordSet
type Engine struct {
	MaxLimit int
	Calendar DayCalendar // nil disables the business-day filter
}

// NewEngine creates a new query engine
func NewEngine(maxLimit int, calendar DayCalendar) *Engine {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	return &Engine{MaxLimit: maxLimit, Calendar: calendar}
}

// Normalize validates f and resolves its page size. Limit <= 0 means the
// maximum; larger limits are clamped.
func (e *Engine) Normalize(f models.VisitFilter) (models.VisitFilter, error) {
	maxLimit := e.MaxLimit
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}

	if f.Offset < 0 {
		return f, fmt.Errorf("%w: offset must be >= 0, got %d", models.ErrInvalidFilter, f.Offset)
	}
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return f, fmt.Errorf("%w: start_date %s is after end_date %s", models.ErrInvalidFilter,
			f.StartDate.Format(models.TimestampLayout), f.EndDate.Format(models.TimestampLayout))
	}
	if f.Near != nil && f.RadiusMeters <= 0 {
		return f, fmt.Errorf("%w: radius_m must be > 0 when near is set", models.ErrInvalidFilter)
	}
	if f.BusinessDaysOnly && e.Calendar == nil {
		return f, fmt.Errorf("%w: no business-day calendar configured", models.ErrInvalidFilter)
	}

	if f.Limit <= 0 || f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	f.Place = strings.TrimSpace(f.Place)
	return f, nil
}

// Query returns the page of records matching f together with the total
// number of matches. Records keep their source order. A nil set is reported
// as models.ErrDataUnavailable.
func (e *Engine) Query(rs *models.RecordSet, f models.VisitFilter) (*models.QueryResult, error) {
	if rs == nil {
		return nil, models.ErrDataUnavailable
	}
	f, err := e.Normalize(f)
	if err != nil {
		return nil, err
	}

	place := strings.ToLower(f.Place)
	items := make([]models.VisitRecord, 0, min(f.Limit, rs.Len()))
	total := 0
	for i := range rs.Records {
		r := &rs.Records[i]
		if !e.match(r, f, place) {
			continue
		}
		if total >= f.Offset && len(items) < f.Limit {
			items = append(items, *r)
		}
		total++
	}

	return &models.QueryResult{
		Items:  items,
		Total:  total,
		Limit:  f.Limit,
		Offset: f.Offset,
	}, nil
}

// match applies the filter predicates in order. A record without a location
// only fails the proximity predicate.
func (e *Engine) match(r *models.VisitRecord, f models.VisitFilter, lowerPlace string) bool {
	if lowerPlace != "" && !strings.Contains(strings.ToLower(r.Place), lowerPlace) {
		return false
	}
	if f.StartDate != nil && r.Timestamp.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && r.Timestamp.After(*f.EndDate) {
		return false
	}
	if f.Near != nil {
		if r.Location == nil || !spatial.Within(*f.Near, *r.Location, f.RadiusMeters) {
			return false
		}
	}
	if f.BusinessDaysOnly && !e.Calendar.Contains(r.Timestamp) {
		return false
	}
	return true
}
