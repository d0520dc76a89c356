// Package sqlite implements the repository interfaces on SQLite.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no CGo, no C compiler, and
// cross-compiling healthd works like any other Go binary.
//
// STORAGE SHAPE:
// Scalar profile and entry fields get their own columns. List fields
// (allergies, meals, conditions, ...) are stored as JSON text, because they
// are always read and written whole and never queried individually.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width UTC, so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DB wraps a sql.DB connection pool and implements every repository
// interface in internal/repository.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/health.db" → file-based database
//   - ":memory:"       → in-memory database, used by tests
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every new connection to ":memory:" is a brand-new empty database,
	// so the pool must never hold more than one.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database is reachable. Used by the liveness route.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			user_id            TEXT PRIMARY KEY,
			age                INTEGER NOT NULL,
			gender             TEXT NOT NULL DEFAULT '',
			weight             REAL,
			height             REAL,
			allergies          TEXT NOT NULL DEFAULT '[]',
			medical_conditions TEXT NOT NULL DEFAULT '[]',
			created_at         TEXT NOT NULL,
			updated_at         TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS diary_entries (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			date       TEXT NOT NULL,
			meals      TEXT NOT NULL DEFAULT '[]',
			conditions TEXT NOT NULL DEFAULT '[]',
			activities TEXT NOT NULL DEFAULT '[]',
			notes      TEXT NOT NULL DEFAULT '',
			extra      TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_diary_user_created ON diary_entries(user_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating diary_entries table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS recommendations (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			recommendation TEXT NOT NULL,
			created_at     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_recommendations_user_created ON recommendations(user_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating recommendations table: %w", err)
	}

	return nil
}

// pageBounds applies the default and maximum page size.
func pageBounds(limit, offset, defaultLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
