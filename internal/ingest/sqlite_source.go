package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/jengzang/visits-backend-go/internal/database"
	"github.com/jengzang/visits-backend-go/internal/models"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads visits from a table of a SQLite database, opened read-only
type SQLiteSource struct {
	path  string
	table string
}

// NewSQLiteSource creates a new SQLite source
func NewSQLiteSource(path, table string) *SQLiteSource {
	return &SQLiteSource{path: path, table: table}
}

// Describe returns path#table
func (s *SQLiteSource) Describe() string {
	return s.path + "#" + s.table
}

// ReadTable reads every column of the table in rowid order
func (s *SQLiteSource) ReadTable(ctx context.Context) (*Table, error) {
	if !identifierRe.MatchString(s.table) {
		return nil, fmt.Errorf("%w: invalid table name %q", models.ErrDataUnavailable, s.table)
	}

	db, err := database.Open(database.Config{Path: s.path, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s" ORDER BY rowid`, s.table))
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", models.ErrDataUnavailable, s.Describe(), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: columns of %s: %v", models.ErrDataUnavailable, s.Describe(), err)
	}

	table := &Table{Columns: columns}
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", models.ErrDataUnavailable, s.Describe(), err)
		}
		record := make([]string, len(columns))
		for i, v := range values {
			record[i] = cellString(v)
		}
		table.Rows = append(table.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", models.ErrDataUnavailable, s.Describe(), err)
	}

	return table, nil
}

// cellString renders a SQLite value the way it would appear in a CSV export
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}
