// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// Two sign-in paths exist and both land in this one struct:
//   - GitHub OAuth: GitHubID is set (non-zero), PasswordHash is empty
//   - Email + password: GitHubID is 0, PasswordHash holds the bcrypt hash
//
// We still generate our own internal string ID (xid) for consistency with
// Script and to avoid tying our primary keys to a third-party's numbering scheme.
//
// WHY GitHubID int64?
// GitHub user IDs are integers (e.g. 1234567). Using int64 avoids overflow
// for large GitHub account numbers. The UNIQUE constraint on github_id in the
// DB ensures one GitHub account maps to exactly one app account.
//
// WHY PasswordHash `json:"-"`?
// The `-` tag excludes the field from JSON entirely. A handler returning a
// User (e.g. /api/me) must never leak the hash, and the tag makes that
// impossible rather than something each handler has to remember.
type User struct {
	ID           string    `json:"id"        db:"id"`
	GitHubID     int64     `json:"githubId,omitempty" db:"github_id"` // GitHub's numeric user ID (0 for email accounts)
	Login        string    `json:"login"     db:"login"`              // display name / GitHub username
	Email        string    `json:"email"     db:"email"`              // Primary email (may be empty for GitHub users who hide it)
	AvatarURL    string    `json:"avatarUrl" db:"avatar_url"`         // Profile picture URL
	PasswordHash string    `json:"-"         db:"password_hash"`      // bcrypt hash; empty for OAuth accounts
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
