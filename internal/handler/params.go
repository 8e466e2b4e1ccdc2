package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/visits-backend-go/internal/ingest"
	"github.com/jengzang/visits-backend-go/internal/models"
	"github.com/jengzang/visits-backend-go/internal/spatial"
)

// VisitQuery holds the raw query parameters of GET /api/visits
type VisitQuery struct {
	Place        string  `form:"place"`
	StartDate    string  `form:"start_date"`
	EndDate      string  `form:"end_date"`
	Limit        int     `form:"limit"`
	Offset       int     `form:"offset"`
	Near         string  `form:"near"`
	RadiusMeters float64 `form:"radius_m"`
	BusinessDays bool    `form:"business_days"`
}

// ToFilter converts the query into a VisitFilter. A bare YYYY-MM-DD date
// covers the whole day: start_date from 00:00, end_date up to 23:59:59.999999999.
func (q VisitQuery) ToFilter() (models.VisitFilter, error) {
	f := models.VisitFilter{
		Place:            q.Place,
		Limit:            q.Limit,
		Offset:           q.Offset,
		RadiusMeters:     q.RadiusMeters,
		BusinessDaysOnly: q.BusinessDays,
	}

	if q.StartDate != "" {
		t, err := parseDateParam(q.StartDate, false)
		if err != nil {
			return f, fmt.Errorf("%w: start_date: %v", models.ErrInvalidFilter, err)
		}
		f.StartDate = &t
	}
	if q.EndDate != "" {
		t, err := parseDateParam(q.EndDate, true)
		if err != nil {
			return f, fmt.Errorf("%w: end_date: %v", models.ErrInvalidFilter, err)
		}
		f.EndDate = &t
	}
	if q.Near != "" {
		p, reason, ok := spatial.ParseCoordinateDetail(q.Near)
		if !ok {
			return f, fmt.Errorf("%w: near: %s", models.ErrInvalidFilter, reason)
		}
		f.Near = &p
	}
	return f, nil
}

func parseDateParam(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(models.DateLayout, s); err == nil {
		if endOfDay {
			return d.Add(24*time.Hour - time.Nanosecond), nil
		}
		return d, nil
	}
	return ingest.ParseTimestamp(s)
}

// parseIndex parses a non-negative record index
func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: invalid visit id %q", models.ErrInvalidFilter, s)
	}
	return i, nil
}
