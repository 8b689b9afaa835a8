package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/scriptgenie/internal/repository"
)

// compile-time check that *DB implements repository.GuestUsageRepository
var _ repository.GuestUsageRepository = (*DB)(nil)

// Increment bumps the counter for (identifier, windowStart) and returns the
// new count, creating the row on first use.
//
// ATOMICITY:
// A read-then-write here would race: two concurrent requests could both read
// count=8, both write count=9, and a guest would get a free request past the
// ceiling. SQLite's UPSERT (INSERT ... ON CONFLICT DO UPDATE) does the
// read-modify-write as ONE statement under the database's write lock, and
// RETURNING hands back the post-increment value from the same statement.
func (db *DB) Increment(ctx context.Context, identifier string, windowStart time.Time) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO guest_usage (identifier, window_start, request_count, updated_at)
		 VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		 ON CONFLICT(identifier, window_start)
		 DO UPDATE SET request_count = request_count + 1, updated_at = CURRENT_TIMESTAMP
		 RETURNING request_count`,
		identifier, windowStart.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: incrementing guest usage %s: %w", identifier, err)
	}
	return count, nil
}
