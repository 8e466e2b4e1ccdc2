package repository

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jengzang/visits-backend-go/internal/database"
	"github.com/jengzang/visits-backend-go/internal/models"
)

// Export formats
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

var exportHeader = []string{"timestamp", "point", "place", "latitude", "longitude"}

// ExportRepository writes record sets to files
type ExportRepository struct{}

// NewExportRepository creates a new export repository
func NewExportRepository() *ExportRepository {
	return &ExportRepository{}
}

// Export writes rs to path in the given format
func (r *ExportRepository) Export(rs *models.RecordSet, format, path string) error {
	switch format {
	case FormatCSV:
		return r.ExportCSV(rs, path)
	case FormatSQLite:
		return r.ExportSQLite(rs, path)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportCSV writes rs as CSV to path
func (r *ExportRepository) ExportCSV(rs *models.RecordSet, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := r.WriteCSV(f, rs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	return nil
}

// WriteCSV writes rs as CSV with latitude/longitude columns, empty when the
// record has no location
func (r *ExportRepository) WriteCSV(w io.Writer, rs *models.RecordSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	row := make([]string, len(exportHeader))
	for i, n := 0, rs.Len(); i < n; i++ {
		rec := &rs.Records[i]
		row[0] = rec.Timestamp.Format(models.TimestampLayout)
		row[1] = rec.RawPoint
		row[2] = rec.Place
		row[3], row[4] = "", ""
		if rec.Location != nil {
			row[3] = strconv.FormatFloat(rec.Location.Latitude(), 'f', -1, 64)
			row[4] = strconv.FormatFloat(rec.Location.Longitude(), 'f', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", rec.Row, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// ExportSQLite writes rs into a SQLite snapshot at path. An existing
// snapshot is replaced in a single transaction.
func (r *ExportRepository) ExportSQLite(rs *models.RecordSet, path string) error {
	db, err := database.Open(database.Config{Path: path})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.NewMigrationManager(db, database.SnapshotMigrations).RunMigrations(); err != nil {
		return fmt.Errorf("failed to migrate snapshot: %w", err)
	}

	return database.Transaction(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM visits"); err != nil {
			return fmt.Errorf("failed to clear visits: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO visits (row_index, timestamp, point, place, latitude, longitude)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, n := 0, rs.Len(); i < n; i++ {
			rec := &rs.Records[i]
			var lat, lon sql.NullFloat64
			if rec.Location != nil {
				lat = sql.NullFloat64{Float64: rec.Location.Latitude(), Valid: true}
				lon = sql.NullFloat64{Float64: rec.Location.Longitude(), Valid: true}
			}
			if _, err := stmt.Exec(rec.Row, rec.Timestamp.Format(models.TimestampLayout), rec.RawPoint, rec.Place, lat, lon); err != nil {
				return fmt.Errorf("failed to insert row %d: %w", rec.Row, err)
			}
		}

		rep := rs.Report
		_, err = tx.Exec(`
			INSERT OR REPLACE INTO load_reports (
				record_set_id, source, rows_read, records_loaded, rows_dropped,
				invalid_coordinates, chunks_skipped, rows_skipped, partial, loaded_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			rs.ID, rs.Source, rep.RowsRead, rep.RecordsLoaded, rep.RowsDropped,
			rep.InvalidCoordinates, rep.ChunksSkipped, rep.RowsSkipped, rep.Partial,
			rs.LoadedAt.Format(models.TimestampLayout),
		)
		if err != nil {
			return fmt.Errorf("failed to save load report: %w", err)
		}
		return nil
	})
}
