// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage provides the implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"
	"time"

	"github.com/sakif/scriptgenie/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// ScriptRepository stores generated scripts. Every read/write is scoped by
// userID — ownership is a query predicate, not an afterthought check.
type ScriptRepository interface {
	CreateScript(ctx context.Context, script *model.Script) error
	GetScriptByID(ctx context.Context, id string) (*model.Script, error)
	GetScriptByShareToken(ctx context.Context, token string) (*model.Script, error)
	ListScripts(ctx context.Context, userID string, opts ListOptions) ([]model.Script, error)
	ListScriptsBySeries(ctx context.Context, userID, seriesID string) ([]model.Script, error)
	UpdateScript(ctx context.Context, script *model.Script) error
	DeleteScript(ctx context.Context, id string) error
}

// SeriesRepository stores the user-defined script groupings.
// DeleteSeries must null out members' series_id in the same transaction —
// member scripts survive their series.
type SeriesRepository interface {
	CreateSeries(ctx context.Context, series *model.VideoSeries) error
	GetSeriesByID(ctx context.Context, id string) (*model.VideoSeries, error)
	ListSeries(ctx context.Context, userID string) ([]model.VideoSeries, error)
	UpdateSeries(ctx context.Context, series *model.VideoSeries) error
	DeleteSeries(ctx context.Context, id string) error
}

// AnalyticsRepository reads performance rows written by the external
// ingestion job. Read-only from this app's point of view.
type AnalyticsRepository interface {
	ListAnalytics(ctx context.Context, userID string) ([]model.ScriptAnalytics, error)
}

// UserRepository stores accounts for both sign-in paths.
type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) error
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// GuestUsageRepository is the counter store behind the guest rate limiter.
// Increment must be atomic: concurrent requests for the same identifier
// may never observe the same count.
type GuestUsageRepository interface {
	Increment(ctx context.Context, identifier string, windowStart time.Time) (int64, error)
}
