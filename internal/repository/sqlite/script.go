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

// compile-time check that *DB implements repository.ScriptRepository
var _ repository.ScriptRepository = (*DB)(nil)

const scriptColumns = `id, user_id, topic, language, script_type, content,
	series_id, episode_number, share_token, is_public, created_at, updated_at`

// CreateScript inserts a new script, generating its ID and timestamps.
//
// WHY xid FOR IDs?
// xid generates 20-character, URL-safe, sortable-by-time IDs without any
// database round trip. Unlike auto-increment integers, they don't leak how
// many rows exist, and unlike UUIDs they sort in creation order.
func (db *DB) CreateScript(ctx context.Context, script *model.Script) error {
	now := time.Now()
	script.ID = xid.New().String()
	script.CreatedAt = now
	script.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO scripts (`+scriptColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		script.ID,
		script.UserID,
		script.Topic,
		script.Language,
		script.ScriptType,
		script.Content,
		script.SeriesID,
		script.EpisodeNumber,
		script.ShareToken,
		script.IsPublic,
		script.CreatedAt,
		script.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting script: %w", err)
	}

	return nil
}

// GetScriptByID retrieves a single script.
// Returns apperror.ErrNotFound if no script exists with that ID.
// Ownership is NOT checked here — the service layer decides whether the
// caller may see the row (owners always, strangers only via share tokens).
func (db *DB) GetScriptByID(ctx context.Context, id string) (*model.Script, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+scriptColumns+` FROM scripts WHERE id = ?`, id)

	script, err := scanScript(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("script", id)
		}
		return nil, fmt.Errorf("sqlite: getting script %s: %w", id, err)
	}
	return script, nil
}

// GetScriptByShareToken retrieves a script by its public share token.
// Only rows marked public are visible through this path — a token that was
// revoked (is_public flipped off) behaves exactly like one that never existed.
func (db *DB) GetScriptByShareToken(ctx context.Context, token string) (*model.Script, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+scriptColumns+` FROM scripts
		 WHERE share_token = ? AND is_public = 1`, token)

	script, err := scanScript(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("shared script", token)
		}
		return nil, fmt.Errorf("sqlite: getting shared script: %w", err)
	}
	return script, nil
}

// ListScripts returns a user's scripts, newest first.
func (db *DB) ListScripts(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Script, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+scriptColumns+` FROM scripts
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing scripts for user %s: %w", userID, err)
	}
	defer rows.Close()

	return collectScripts(rows)
}

// ListScriptsBySeries returns a user's scripts in one series, in episode order.
func (db *DB) ListScriptsBySeries(ctx context.Context, userID, seriesID string) ([]model.Script, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+scriptColumns+` FROM scripts
		 WHERE user_id = ? AND series_id = ?
		 ORDER BY episode_number ASC, created_at ASC`,
		userID, seriesID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing scripts for series %s: %w", seriesID, err)
	}
	defer rows.Close()

	return collectScripts(rows)
}

// UpdateScript persists changes to an existing script.
// Returns apperror.ErrNotFound if the row vanished between read and write.
func (db *DB) UpdateScript(ctx context.Context, script *model.Script) error {
	script.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE scripts
		 SET topic = ?, language = ?, script_type = ?, content = ?,
		     series_id = ?, episode_number = ?, share_token = ?, is_public = ?,
		     updated_at = ?
		 WHERE id = ?`,
		script.Topic,
		script.Language,
		script.ScriptType,
		script.Content,
		script.SeriesID,
		script.EpisodeNumber,
		script.ShareToken,
		script.IsPublic,
		script.UpdatedAt,
		script.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating script %s: %w", script.ID, err)
	}

	return requireRowAffected(result, "script", script.ID)
}

// DeleteScript removes a script and its analytics rows.
// Returns apperror.ErrNotFound if no script exists with that ID.
func (db *DB) DeleteScript(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete script tx: %w", err)
	}
	defer tx.Rollback()

	// Analytics reference scripts(id); remove them first so the foreign key
	// doesn't reject the parent delete.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM script_analytics WHERE script_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting analytics for script %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM scripts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting script %s: %w", id, err)
	}
	if err := requireRowAffected(result, "script", id); err != nil {
		return err
	}

	return tx.Commit()
}

// scanner is satisfied by both *sql.Row and *sql.Rows, so one scan helper
// serves single-row and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

func scanScript(s scanner) (*model.Script, error) {
	var sc model.Script
	err := s.Scan(
		&sc.ID,
		&sc.UserID,
		&sc.Topic,
		&sc.Language,
		&sc.ScriptType,
		&sc.Content,
		&sc.SeriesID,
		&sc.EpisodeNumber,
		&sc.ShareToken,
		&sc.IsPublic,
		&sc.CreatedAt,
		&sc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func collectScripts(rows *sql.Rows) ([]model.Script, error) {
	// Initialize to an empty slice, not nil — nil marshals to JSON null,
	// and clients expect [] for "no scripts yet".
	scripts := []model.Script{}
	for rows.Next() {
		sc, err := scanScript(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning script row: %w", err)
		}
		scripts = append(scripts, *sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating script rows: %w", err)
	}
	return scripts, nil
}

// requireRowAffected turns a zero-row UPDATE/DELETE into a not-found error.
func requireRowAffected(result sql.Result, resource, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
