package sqlite

import (
	"context"
	"testing"
	"time"
)

func TestGuestUsageIncrement(t *testing.T) {
	db := newTestDB(t)
	window := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for want := int64(1); want <= 3; want++ {
		got, err := db.Increment(context.Background(), "generate-script_203.0.113.7", window)
		if err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
		if got != want {
			t.Errorf("Increment() = %d, want %d", got, want)
		}
	}
}

func TestGuestUsageIncrement_SeparateIdentifiers(t *testing.T) {
	db := newTestDB(t)
	window := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	if _, err := db.Increment(context.Background(), "generate-script_203.0.113.7", window); err != nil {
		t.Fatalf("Increment() error = %v", err)
	}

	// A different endpoint for the same IP gets its own counter.
	got, err := db.Increment(context.Background(), "voiceover_203.0.113.7", window)
	if err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if got != 1 {
		t.Errorf("Increment() = %d, want 1 for a fresh identifier", got)
	}
}

func TestGuestUsageIncrement_SeparateWindows(t *testing.T) {
	db := newTestDB(t)
	day1 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	if _, err := db.Increment(context.Background(), "chat_203.0.113.7", day1); err != nil {
		t.Fatalf("Increment() error = %v", err)
	}

	// A new window starts a new row — yesterday's count doesn't carry over.
	got, err := db.Increment(context.Background(), "chat_203.0.113.7", day2)
	if err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if got != 1 {
		t.Errorf("Increment() = %d, want 1 in a fresh window", got)
	}
}

// Concurrent increments must never lose an update — the UPSERT runs the
// read-modify-write as a single statement.
func TestGuestUsageIncrement_Concurrent(t *testing.T) {
	db := newTestDB(t)
	window := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	const workers = 10
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := db.Increment(context.Background(), "enhance-script_203.0.113.7", window)
			errs <- err
		}()
	}
	for i := 0; i < workers; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent Increment() error = %v", err)
		}
	}

	got, err := db.Increment(context.Background(), "enhance-script_203.0.113.7", window)
	if err != nil {
		t.Fatalf("final Increment() error = %v", err)
	}
	if got != workers+1 {
		t.Errorf("final count = %d, want %d", got, workers+1)
	}
}
