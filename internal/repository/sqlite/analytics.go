package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/scriptgenie/internal/model"
	"github.com/sakif/scriptgenie/internal/repository"
)

// compile-time check that *DB implements repository.AnalyticsRepository
var _ repository.AnalyticsRepository = (*DB)(nil)

// ListAnalytics returns every analytics row for a user, newest publication
// first. Aggregation (totals, per-platform sums, top scripts) happens in the
// service layer — the row counts here are small and the shaping logic is
// easier to test against Go slices than against SQL.
func (db *DB) ListAnalytics(ctx context.Context, userID string) ([]model.ScriptAnalytics, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, script_id, user_id, views, likes, comments, platform,
		        published_at, created_at
		 FROM script_analytics
		 WHERE user_id = ?
		 ORDER BY published_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing analytics for user %s: %w", userID, err)
	}
	defer rows.Close()

	list := []model.ScriptAnalytics{}
	for rows.Next() {
		var a model.ScriptAnalytics
		err := rows.Scan(
			&a.ID,
			&a.ScriptID,
			&a.UserID,
			&a.Views,
			&a.Likes,
			&a.Comments,
			&a.Platform,
			&a.PublishedAt,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning analytics row: %w", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating analytics rows: %w", err)
	}
	return list, nil
}
