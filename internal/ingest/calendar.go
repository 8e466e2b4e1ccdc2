package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jengzang/visits-backend-go/internal/models"
)

// calendarColumn is the preferred date column of a business-day file
const calendarColumn = "fecha"

// Calendar is a set of business days keyed by YYYY-MM-DD
type Calendar map[string]struct{}

// Contains reports whether t falls on a business day (UTC calendar date)
func (c Calendar) Contains(t time.Time) bool {
	_, ok := c[t.UTC().Format(models.DateLayout)]
	return ok
}

// Len returns the number of business days
func (c Calendar) Len() int {
	return len(c)
}

// LoadCalendar reads a CSV of business days. Dates come from the "fecha"
// column when present, otherwise from the first column. Unparseable cells are
// skipped; a file without a single usable date is an error.
func LoadCalendar(ctx context.Context, path string) (Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar: %w", err)
	}
	defer f.Close()

	table, err := readCSV(ctx, f, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar: %w", err)
	}

	idx := table.ColumnIndex(calendarColumn)
	if idx < 0 {
		idx = 0
	}

	cal := make(Calendar, len(table.Rows))
	for i := range table.Rows {
		day, err := ParseTimestamp(table.Cell(i, idx))
		if err != nil {
			continue
		}
		cal[day.Format(models.DateLayout)] = struct{}{}
	}
	if len(cal) == 0 {
		return nil, fmt.Errorf("calendar %s contains no dates", path)
	}
	return cal, nil
}
