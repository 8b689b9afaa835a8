package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/scriptgenie/internal/apperror"
	"github.com/sakif/scriptgenie/internal/model"
	"github.com/sakif/scriptgenie/internal/repository"
)

// compile-time check that *DB implements repository.SeriesRepository
var _ repository.SeriesRepository = (*DB)(nil)

// CreateSeries inserts a new video series, generating its ID and timestamps.
func (db *DB) CreateSeries(ctx context.Context, series *model.VideoSeries) error {
	now := time.Now()
	series.ID = xid.New().String()
	series.CreatedAt = now
	series.UpdatedAt = now

	if series.ColorTheme == "" {
		series.ColorTheme = model.DefaultColorTheme
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO video_series (id, user_id, name, description, color_theme, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		series.ID,
		series.UserID,
		series.Name,
		series.Description,
		series.ColorTheme,
		series.CreatedAt,
		series.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting series: %w", err)
	}

	return nil
}

// GetSeriesByID retrieves a single series with its derived script count.
// Returns apperror.ErrNotFound if no series exists with that ID.
func (db *DB) GetSeriesByID(ctx context.Context, id string) (*model.VideoSeries, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT s.id, s.user_id, s.name, s.description, s.color_theme,
		        s.created_at, s.updated_at,
		        (SELECT COUNT(*) FROM scripts WHERE series_id = s.id) AS script_count
		 FROM video_series s WHERE s.id = ?`, id)

	series, err := scanSeries(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("series", id)
		}
		return nil, fmt.Errorf("sqlite: getting series %s: %w", id, err)
	}
	return series, nil
}

// ListSeries returns a user's series, newest first, each with its script count.
//
// The count is a correlated subquery rather than a stored column — the sets
// are small, and a stored counter would drift every time a script is moved
// or deleted.
func (db *DB) ListSeries(ctx context.Context, userID string) ([]model.VideoSeries, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT s.id, s.user_id, s.name, s.description, s.color_theme,
		        s.created_at, s.updated_at,
		        (SELECT COUNT(*) FROM scripts WHERE series_id = s.id) AS script_count
		 FROM video_series s
		 WHERE s.user_id = ?
		 ORDER BY s.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing series for user %s: %w", userID, err)
	}
	defer rows.Close()

	list := []model.VideoSeries{}
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning series row: %w", err)
		}
		list = append(list, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating series rows: %w", err)
	}
	return list, nil
}

// UpdateSeries persists changes to name, description, and color theme.
// Returns apperror.ErrNotFound if the series doesn't exist.
func (db *DB) UpdateSeries(ctx context.Context, series *model.VideoSeries) error {
	series.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE video_series
		 SET name = ?, description = ?, color_theme = ?, updated_at = ?
		 WHERE id = ?`,
		series.Name,
		series.Description,
		series.ColorTheme,
		series.UpdatedAt,
		series.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating series %s: %w", series.ID, err)
	}

	return requireRowAffected(result, "series", series.ID)
}

// DeleteSeries removes a series, detaching its member scripts first.
//
// Member scripts must SURVIVE series deletion — they lose their grouping,
// nothing else. Both statements run in one transaction so a crash can't
// leave scripts pointing at a deleted series.
func (db *DB) DeleteSeries(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete series tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE scripts SET series_id = NULL, episode_number = 0 WHERE series_id = ?`,
		id); err != nil {
		return fmt.Errorf("sqlite: detaching scripts from series %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM video_series WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting series %s: %w", id, err)
	}
	if err := requireRowAffected(result, "series", id); err != nil {
		return err
	}

	return tx.Commit()
}

func scanSeries(s scanner) (*model.VideoSeries, error) {
	var series model.VideoSeries
	err := s.Scan(
		&series.ID,
		&series.UserID,
		&series.Name,
		&series.Description,
		&series.ColorTheme,
		&series.CreatedAt,
		&series.UpdatedAt,
		&series.ScriptCount,
	)
	if err != nil {
		return nil, err
	}
	return &series, nil
}
