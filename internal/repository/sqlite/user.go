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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts or updates a user based on their GitHub ID.
//
// We check by GitHub ID first — if a user with this github_id already exists,
// we want to KEEP their existing internal ID and just refresh the profile
// fields (login/email/avatar may have changed on GitHub's side). Only truly
// new users get an ID generated here.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != "" {
		user.ID = existingID
		user.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET login = ?, email = ?, avatar_url = ?, updated_at = ?
			 WHERE id = ?`,
			user.Login,
			user.Email,
			user.AvatarURL,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
	} else {
		now := time.Now()
		user.ID = xid.New().String()
		user.CreatedAt = now
		user.UpdatedAt = now

		_, err = db.conn.ExecContext(ctx,
			`INSERT INTO users (id, github_id, login, email, avatar_url, password_hash, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, '', ?, ?)`,
			user.ID,
			user.GitHubID,
			user.Login,
			user.Email,
			user.AvatarURL,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", user.GitHubID, err)
		}
	}

	return nil
}

// CreateUser inserts an email/password account. The unique index on email
// surfaces duplicates as an error; callers should check for an existing
// account first and translate this into a conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, github_id, login, email, avatar_url, password_hash, created_at, updated_at)
		 VALUES (?, 0, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Login,
		user.Email,
		user.AvatarURL,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `id = ?`, id)
}

// GetUserByEmail retrieves a user by email (the login path for
// email/password accounts). Returns apperror.ErrNotFound if absent.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `email = ?`, email)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, github_id, login, email, avatar_url, password_hash, created_at, updated_at
		 FROM users WHERE `+where,
		arg,
	).Scan(
		&u.ID,
		&u.GitHubID,
		&u.Login,
		&u.Email,
		&u.AvatarURL,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprintf("%v", arg))
		}
		return nil, fmt.Errorf("sqlite: getting user (%s %v): %w", where, arg, err)
	}

	return &u, nil
}
