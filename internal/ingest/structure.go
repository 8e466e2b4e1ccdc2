package ingest

import (
	"context"
	"fmt"

	"github.com/jengzang/visits-backend-go/internal/models"
)

// DefaultSampleRows is how many rows Inspect returns as a sample
const DefaultSampleRows = 5

// Inspect reads the source and describes its shape without normalizing it.
// Unlike Load it does not require the visit columns to be present.
func Inspect(ctx context.Context, src Source, sampleRows int) (*models.Structure, error) {
	if sampleRows < 0 {
		sampleRows = DefaultSampleRows
	}

	table, err := src.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", src.Describe(), err)
	}

	s := &models.Structure{
		Source:       src.Describe(),
		Columns:      table.Columns,
		TotalRows:    len(table.Rows),
		TotalColumns: len(table.Columns),
		SampleData:   make([]map[string]string, 0, min(sampleRows, len(table.Rows))),
		EmptyCounts:  make(map[string]int, len(table.Columns)),
	}

	for j, col := range table.Columns {
		empty := 0
		for i := range table.Rows {
			if table.Cell(i, j) == "" {
				empty++
			}
		}
		s.EmptyCounts[col] = empty
	}

	for i := 0; i < len(table.Rows) && i < sampleRows; i++ {
		row := make(map[string]string, len(table.Columns))
		for j, col := range table.Columns {
			row[col] = table.Cell(i, j)
		}
		s.SampleData = append(s.SampleData, row)
	}

	if idx := table.ColumnIndex(ColumnTimestamp); idx >= 0 {
		for i := range table.Rows {
			ts, err := ParseTimestamp(table.Cell(i, idx))
			if err != nil {
				s.TimestampErrors++
				continue
			}
			if s.DateRange.Start == nil || ts.Before(*s.DateRange.Start) {
				s.DateRange.Start = &ts
			}
			if s.DateRange.End == nil || ts.After(*s.DateRange.End) {
				s.DateRange.End = &ts
			}
		}
	}

	if idx := table.ColumnIndex(ColumnPlace); idx >= 0 {
		places := make(map[string]struct{})
		for i := range table.Rows {
			places[table.Cell(i, idx)] = struct{}{}
		}
		s.UniquePlaces = len(places)
	}

	return s, nil
}
