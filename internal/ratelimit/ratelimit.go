// Package ratelimit enforces per-IP request ceilings for guest (unauthenticated)
// callers of the generation endpoints.
//
// DESIGN:
// The limiter is an injected interface keyed by an explicit caller identity,
// not ambient header parsing buried in handlers. That makes three things
// possible that an inline counter can't do:
//   - services/handlers can be tested with a fake limiter
//   - the fail-open policy on limiter errors is the CALLER's explicit decision
//     (see the generate handler), not an incidental catch-all
//   - the counting backend (SQLite today) is swappable
//
// ALGORITHM: fixed window. Each (identifier, window-start) pair owns one
// counter row; the first request of a new window starts a fresh row and old
// rows simply stop being read. Fixed window allows up to 2x the ceiling
// across a window boundary, which is acceptable for an abuse brake — these
// ceilings protect gateway spend, they are not billing.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Per-endpoint guest ceilings. The numbers track relative upstream compute
// cost: voiceover is the most expensive call, chat the cheapest.
const (
	GenerateLimit  = 9
	EnhanceLimit   = 20
	AnalyzeLimit   = 20
	ChatLimit      = 50
	VoiceoverLimit = 5
)

// DefaultWindow is how long a guest counter lives before resetting.
const DefaultWindow = 24 * time.Hour

// Result is the outcome of a limiter check.
type Result struct {
	Allowed   bool
	Remaining int // requests left in the current window (0 when not allowed)
}

// Limiter decides whether a guest request may proceed.
//
// A non-nil error means the limiter BACKEND failed, not that the caller is
// over quota. Callers choose what to do with it; this server fails open
// (logs and proceeds) because availability of the product beats strict
// quota enforcement when the counter store hiccups.
type Limiter interface {
	Check(ctx context.Context, identifier string, maxRequests int) (Result, error)
}

// CounterStore is the persistence hook: atomically increment the counter for
// (identifier, windowStart) and return the new count.
type CounterStore interface {
	Increment(ctx context.Context, identifier string, windowStart time.Time) (int64, error)
}

// FixedWindow is the production Limiter: one counter per identifier per window.
type FixedWindow struct {
	store  CounterStore
	window time.Duration
	now    func() time.Time // injectable clock for tests
}

var _ Limiter = (*FixedWindow)(nil)

// NewFixedWindow creates a limiter over the given counter store.
// A non-positive window falls back to DefaultWindow.
func NewFixedWindow(store CounterStore, window time.Duration) *FixedWindow {
	if window <= 0 {
		window = DefaultWindow
	}
	return &FixedWindow{
		store:  store,
		window: window,
		now:    time.Now,
	}
}

// Check increments the caller's counter and compares it to the ceiling.
// The increment happens FIRST: a denied request still counts, so hammering
// a maxed-out endpoint never sneaks extra requests through.
func (f *FixedWindow) Check(ctx context.Context, identifier string, maxRequests int) (Result, error) {
	windowStart := f.now().Truncate(f.window)

	count, err := f.store.Increment(ctx, identifier, windowStart)
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: incrementing %s: %w", identifier, err)
	}

	remaining := maxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= int64(maxRequests),
		Remaining: remaining,
	}, nil
}

// ClientIP derives the caller's IP for guest bucketing.
//
// Order of trust: first hop of X-Forwarded-For (set by our proxy), then
// X-Real-IP, then the literal "unknown". The "unknown" fallback means every
// client we can't identify shares ONE bucket — a deliberate trade: better to
// over-throttle anonymous traffic with stripped headers than to give it an
// unlimited lane.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return "unknown"
}

// Identifier builds the counter key: "<endpoint-prefix>_<client-ip>".
// Each endpoint family gets its own bucket per IP, so burning the chat
// quota doesn't lock a guest out of script generation.
func Identifier(endpoint, clientIP string) string {
	return endpoint + "_" + clientIP
}
