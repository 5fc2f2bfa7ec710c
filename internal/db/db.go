package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
	path string
}

// New opens or creates the SQLite database at the given path. The default
// location comes from config.
func New(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("no database path configured")
	}

	// Parent directory may not exist on first run
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys and WAL mode
	if _, err := conn.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	db := &DB{conn: conn, path: path}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}

// SchemaVersion returns the highest applied migration
func (d *DB) SchemaVersion() (int, error) {
	var version int
	err := d.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	return version, err
}

// migrate runs the database schema migrations
func (d *DB) migrate() error {
	// Create schema version table
	_, err := d.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	// Get current version
	version, err := d.SchemaVersion()
	if err != nil {
		return err
	}

	// Run migrations
	migrations := []string{
		migrationV1,
	}

	for i, migration := range migrations {
		v := i + 1
		if v <= version {
			continue
		}

		tx, err := d.conn.Begin()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(migration); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration v%d failed: %w", v, err)
		}

		// Record the version in the same transaction as the schema change
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", v); err != nil {
			tx.Rollback()
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

// migrationV1 creates the snapshot schema
const migrationV1 = `
-- One row per discovery run
CREATE TABLE IF NOT EXISTS snapshots (
    id TEXT PRIMARY KEY,
    taken_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_time ON snapshots(taken_at);

-- Devices in discovery order
CREATE TABLE IF NOT EXISTS devices (
    id INTEGER PRIMARY KEY,
    snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    removable INTEGER NOT NULL DEFAULT 0,
    model TEXT,
    serial TEXT,
    size_blocks INTEGER NOT NULL,

    -- GPT overlay outcome
    uuid_status TEXT NOT NULL,
    uuid TEXT,
    uuid_error TEXT
);

CREATE INDEX IF NOT EXISTS idx_devices_snapshot ON devices(snapshot_id, position);
CREATE INDEX IF NOT EXISTS idx_devices_serial ON devices(serial);

CREATE TABLE IF NOT EXISTS partitions (
    id INTEGER PRIMARY KEY,
    device_id INTEGER NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    number INTEGER NOT NULL,
    size_blocks INTEGER NOT NULL,

    -- NULL when the partition was not mounted
    mount_device TEXT,
    mountpoint TEXT,
    filesystem TEXT,

    uuid_status TEXT NOT NULL,
    uuid TEXT,
    uuid_error TEXT
);

CREATE INDEX IF NOT EXISTS idx_partitions_device ON partitions(device_id, position);
`
