package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// SnapshotMigrations create the schema of an exported record set snapshot
var SnapshotMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_visits",
		SQL: `
			CREATE TABLE IF NOT EXISTS visits (
				row_index INTEGER PRIMARY KEY,
				timestamp TEXT NOT NULL,
				point     TEXT NOT NULL,
				place     TEXT NOT NULL,
				latitude  REAL,
				longitude REAL
			);
			CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
			CREATE INDEX IF NOT EXISTS idx_visits_place ON visits(place);
		`,
	},
	{
		Version: 2,
		Name:    "create_load_reports",
		SQL: `
			CREATE TABLE IF NOT EXISTS load_reports (
				record_set_id       TEXT PRIMARY KEY,
				source              TEXT NOT NULL,
				rows_read           INTEGER NOT NULL,
				records_loaded      INTEGER NOT NULL,
				rows_dropped        INTEGER NOT NULL,
				invalid_coordinates INTEGER NOT NULL,
				chunks_skipped      INTEGER NOT NULL,
				rows_skipped        INTEGER NOT NULL,
				partial             INTEGER NOT NULL,
				loaded_at           TEXT NOT NULL
			);
		`,
	},
}

// MigrationManager manages database migrations
type MigrationManager struct {
	db         *sql.DB
	migrations []Migration
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB, migrations []Migration) *MigrationManager {
	return &MigrationManager{
		db:         db,
		migrations: migrations,
	}
}

// InitMigrationsTable creates the migrations tracking table
func (m *MigrationManager) InitMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := m.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns a list of applied migration versions
func (m *MigrationManager) GetAppliedMigrations() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// ApplyMigration applies a single migration
func (m *MigrationManager) ApplyMigration(migration Migration) error {
	err := Transaction(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(migration.SQL); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", migration.Version, migration.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("applied migration", "version", migration.Version, "name", migration.Name)
	return nil
}

// RunMigrations runs all pending migrations
func (m *MigrationManager) RunMigrations() error {
	// Initialize migrations table
	if err := m.InitMigrationsTable(); err != nil {
		return err
	}

	// Get applied migrations
	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return err
	}

	// Apply pending migrations
	for _, migration := range m.migrations {
		if applied[migration.Version] {
			continue
		}

		if err := m.ApplyMigration(migration); err != nil {
			return err
		}
	}

	return nil
}
