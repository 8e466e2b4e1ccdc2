package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jengzang/visits-backend-go/internal/models"
)

// Required source columns
const (
	ColumnTimestamp = "timestamp"
	ColumnPoint     = "point"
	ColumnPlace     = "place"
)

// Source is a read-only tabular visit source
type Source interface {
	// Describe returns a human readable location of the source
	Describe() string
	// ReadTable reads the whole source into memory
	ReadTable(ctx context.Context) (*Table, error)
}

// Table is a raw, untyped copy of the source
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of a column, matched case-insensitively
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return i
		}
	}
	return -1
}

// Cell returns the value at row i, column j; short rows read as empty
func (t *Table) Cell(i, j int) string {
	if j < 0 || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}

// RawRows projects the table onto the timestamp, point and place columns.
// A missing column makes the whole source unusable.
func (t *Table) RawRows() ([]models.RawRow, error) {
	tsIdx := t.ColumnIndex(ColumnTimestamp)
	pointIdx := t.ColumnIndex(ColumnPoint)
	placeIdx := t.ColumnIndex(ColumnPlace)

	var missing []string
	if tsIdx < 0 {
		missing = append(missing, ColumnTimestamp)
	}
	if pointIdx < 0 {
		missing = append(missing, ColumnPoint)
	}
	if placeIdx < 0 {
		missing = append(missing, ColumnPlace)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing column(s) %s", models.ErrDataUnavailable, strings.Join(missing, ", "))
	}

	rows := make([]models.RawRow, len(t.Rows))
	for i := range t.Rows {
		rows[i] = models.RawRow{
			Row:       i,
			Timestamp: t.Cell(i, tsIdx),
			Point:     t.Cell(i, pointIdx),
			Place:     t.Cell(i, placeIdx),
		}
	}
	return rows, nil
}

// OpenSource picks a Source implementation from the file extension.
// SQLite files are read from table; everything else is treated as CSV.
func OpenSource(path, table string) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteSource(path, table)
	default:
		return NewCSVSource(path)
	}
}

// CSVSource reads visits from a CSV file with a header row
type CSVSource struct {
	path string
}

// NewCSVSource creates a new CSV source
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Describe returns the file path
func (s *CSVSource) Describe() string {
	return s.path
}

// ReadTable reads the header and all records
func (s *CSVSource) ReadTable(ctx context.Context) (*Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}
	defer f.Close()

	return readCSV(ctx, f, s.path)
}

func readCSV(ctx context.Context, r io.Reader, name string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s is empty", models.ErrDataUnavailable, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header of %s: %v", models.ErrDataUnavailable, name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	table := &Table{Columns: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", models.ErrDataUnavailable, name, err)
		}
		table.Rows = append(table.Rows, record)

		if len(table.Rows)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}

	return table, nil
}
