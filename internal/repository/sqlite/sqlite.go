// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. Perfect for:
// - Single-server deployments (which is most apps, honestly)
// - Development and testing (use ":memory:" for an in-memory DB)
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
//
// The pattern is always:
//  1. sql.Open(driverName, dataSourceName) → creates a pool
//  2. db.QueryContext / db.ExecContext     → runs queries
//  3. rows.Scan(&field1, &field2)          → reads results into Go variables
package sqlite

import (
	"database/sql"
	"fmt"

	// BLANK IMPORT:
	// The underscore import `_ "modernc.org/sqlite"` is a "side-effect only" import.
	// The sqlite package's init() function registers itself with database/sql as a
	// driver named "sqlite". After this import, sql.Open("sqlite", ...) knows how
	// to talk to SQLite.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides repository methods.
//
// One struct implements all the repository interfaces. The tables belong to
// one schema and share one pool; splitting them into per-table structs would
// just mean threading the same *sql.DB through five constructors.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/scriptgenie.db"  → file-based database (persistent)
//   - ":memory:"             → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping verifies the connection actually works.
	// Without this, a bad path or permissions issue would only surface
	// on the first query — which is much harder to debug.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL (Write-Ahead Logging) mode:
	// Default SQLite locks the entire database during writes.
	// WAL mode allows concurrent reads WHILE a write is happening.
	// This is critical for a web server where multiple requests hit the DB.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (for backwards compatibility).
	// We turn them on: scripts → users, scripts → video_series, analytics → scripts.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
// Wherever you call New(), immediately defer Close() — this flushes the WAL
// and releases the file lock even if a panic occurs.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates and updates all tables. CREATE TABLE IF NOT EXISTS is
// idempotent, so this is safe to run on every startup.
func (db *DB) migrate() error {
	// users: github_id is 0 for email/password accounts, so uniqueness is
	// enforced with partial indexes rather than column constraints.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			github_id  INTEGER NOT NULL DEFAULT 0,
			login      TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id != 0;
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email
			ON users(email) WHERE email != '';
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// password_hash arrived with email/password auth — added via ALTER so
	// databases created before the column exist keep working.
	if err := db.addColumnIfNotExists("users", "password_hash",
		"TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding password_hash to users: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS video_series (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color_theme TEXT NOT NULL DEFAULT '#8b5cf6',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_video_series_user_id ON video_series(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating video_series table: %w", err)
	}

	// scripts.series_id deliberately has NO ON DELETE CASCADE: deleting a
	// series must keep its member scripts. DeleteSeries nulls the column
	// explicitly inside a transaction instead.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS scripts (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL REFERENCES users(id),
			topic          TEXT NOT NULL,
			language       TEXT NOT NULL,
			script_type    TEXT NOT NULL,
			content        TEXT NOT NULL DEFAULT '',
			series_id      TEXT REFERENCES video_series(id),
			episode_number INTEGER NOT NULL DEFAULT 0,
			share_token    TEXT NOT NULL DEFAULT '',
			is_public      INTEGER NOT NULL DEFAULT 0,
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scripts_user_id ON scripts(user_id);
		CREATE INDEX IF NOT EXISTS idx_scripts_series_id ON scripts(series_id);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_scripts_share_token
			ON scripts(share_token) WHERE share_token != '';
	`)
	if err != nil {
		return fmt.Errorf("creating scripts table: %w", err)
	}

	// Analytics rows are written by an external ingestion job with direct
	// database access; this server only reads and aggregates them.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS script_analytics (
			id           TEXT PRIMARY KEY,
			script_id    TEXT NOT NULL REFERENCES scripts(id),
			user_id      TEXT NOT NULL REFERENCES users(id),
			views        INTEGER NOT NULL DEFAULT 0,
			likes        INTEGER NOT NULL DEFAULT 0,
			comments     INTEGER NOT NULL DEFAULT 0,
			platform     TEXT NOT NULL DEFAULT '',
			published_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_script_analytics_user_id ON script_analytics(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating script_analytics table: %w", err)
	}

	// Guest rate-limit counters: one row per (identifier, window_start).
	// Old windows are never read again. At one row per guest IP per endpoint
	// per day the table stays tiny without a cleanup job.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS guest_usage (
			identifier    TEXT NOT NULL,
			window_start  DATETIME NOT NULL,
			request_count INTEGER NOT NULL DEFAULT 0,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (identifier, window_start)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating guest_usage table: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
// Makes ALTER TABLE migrations idempotent — safe to run multiple times.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil // column already exists
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}
