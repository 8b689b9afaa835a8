package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/scriptgenie/internal/model"
)

// newTestDB returns a DB backed by an in-memory SQLite database.
// Each test gets a fresh database — no cleanup, no cross-test leakage.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// Each pool connection to ":memory:" gets its OWN database. Pin the pool
	// to one connection so every query (including concurrent ones) sees the
	// migrated schema.
	db.conn.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a GitHub-backed user and fails the test on error.
func createTestUser(t *testing.T, db *DB, githubID int64, login string) *model.User {
	t.Helper()
	user := &model.User{
		GitHubID:  githubID,
		Login:     login,
		Email:     login + "@example.com",
		AvatarURL: "https://avatars.githubusercontent.com/u/123",
	}
	if err := db.Upsert(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestScript creates a script owned by userID and fails the test on error.
func createTestScript(t *testing.T, db *DB, userID, topic string) *model.Script {
	t.Helper()
	script := &model.Script{
		UserID:     userID,
		Topic:      topic,
		Language:   model.LanguageEnglish,
		ScriptType: model.ScriptTypeExplainer,
		Content:    "Generated content for " + topic,
	}
	if err := db.CreateScript(context.Background(), script); err != nil {
		t.Fatalf("failed to create test script: %v", err)
	}
	return script
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	// Running migrations again on an already-migrated database must succeed.
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
}
