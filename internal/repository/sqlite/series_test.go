package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/scriptgenie/internal/apperror"
	"github.com/sakif/scriptgenie/internal/model"
)

func TestSeriesCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 1, "collector")

	series := &model.VideoSeries{
		UserID:      user.ID,
		Name:        "Physics Shorts",
		Description: "One concept per video",
	}
	if err := db.CreateSeries(context.Background(), series); err != nil {
		t.Fatalf("CreateSeries() error = %v", err)
	}
	if series.ID == "" {
		t.Fatal("CreateSeries() did not set series.ID")
	}
	if series.ColorTheme != model.DefaultColorTheme {
		t.Errorf("ColorTheme = %q, want default %q", series.ColorTheme, model.DefaultColorTheme)
	}

	got, err := db.GetSeriesByID(context.Background(), series.ID)
	if err != nil {
		t.Fatalf("GetSeriesByID() error = %v", err)
	}
	if got.Name != "Physics Shorts" {
		t.Errorf("Name = %q, want %q", got.Name, "Physics Shorts")
	}
	if got.ScriptCount != 0 {
		t.Errorf("ScriptCount = %d, want 0 for empty series", got.ScriptCount)
	}
}

func TestSeriesScriptCountDerived(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 1, "counter")

	series := &model.VideoSeries{UserID: user.ID, Name: "Counted"}
	if err := db.CreateSeries(context.Background(), series); err != nil {
		t.Fatalf("CreateSeries() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		s := createTestScript(t, db, user.ID, "member")
		s.SeriesID = &series.ID
		if err := db.UpdateScript(context.Background(), s); err != nil {
			t.Fatalf("UpdateScript() error = %v", err)
		}
	}

	got, err := db.GetSeriesByID(context.Background(), series.ID)
	if err != nil {
		t.Fatalf("GetSeriesByID() error = %v", err)
	}
	if got.ScriptCount != 3 {
		t.Errorf("ScriptCount = %d, want 3", got.ScriptCount)
	}
}

func TestListSeries_ScopedToUser(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, 1, "alice")
	bob := createTestUser(t, db, 2, "bob")

	for _, name := range []string{"A1", "A2"} {
		s := &model.VideoSeries{UserID: alice.ID, Name: name}
		if err := db.CreateSeries(context.Background(), s); err != nil {
			t.Fatalf("CreateSeries(%s) error = %v", name, err)
		}
	}
	s := &model.VideoSeries{UserID: bob.ID, Name: "B1"}
	if err := db.CreateSeries(context.Background(), s); err != nil {
		t.Fatalf("CreateSeries(B1) error = %v", err)
	}

	list, err := db.ListSeries(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListSeries() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListSeries() returned %d series, want 2", len(list))
	}
}

func TestSeriesUpdate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 1, "renamer")

	series := &model.VideoSeries{UserID: user.ID, Name: "Old Name"}
	if err := db.CreateSeries(context.Background(), series); err != nil {
		t.Fatalf("CreateSeries() error = %v", err)
	}

	series.Name = "New Name"
	series.ColorTheme = "#ff0000"
	if err := db.UpdateSeries(context.Background(), series); err != nil {
		t.Fatalf("UpdateSeries() error = %v", err)
	}

	got, err := db.GetSeriesByID(context.Background(), series.ID)
	if err != nil {
		t.Fatalf("GetSeriesByID() error = %v", err)
	}
	if got.Name != "New Name" || got.ColorTheme != "#ff0000" {
		t.Errorf("got Name=%q ColorTheme=%q after update", got.Name, got.ColorTheme)
	}
}

// Deleting a series must keep the member scripts and just detach them.
func TestSeriesDelete_DetachesScripts(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 1, "detacher")

	series := &model.VideoSeries{UserID: user.ID, Name: "Doomed"}
	if err := db.CreateSeries(context.Background(), series); err != nil {
		t.Fatalf("CreateSeries() error = %v", err)
	}

	member := createTestScript(t, db, user.ID, "survivor")
	member.SeriesID = &series.ID
	member.EpisodeNumber = 7
	if err := db.UpdateScript(context.Background(), member); err != nil {
		t.Fatalf("UpdateScript() error = %v", err)
	}

	if err := db.DeleteSeries(context.Background(), series.ID); err != nil {
		t.Fatalf("DeleteSeries() error = %v", err)
	}

	_, err := db.GetSeriesByID(context.Background(), series.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetSeriesByID() after delete error = %v, want ErrNotFound", err)
	}

	got, err := db.GetScriptByID(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("member script vanished with its series: %v", err)
	}
	if got.SeriesID != nil {
		t.Errorf("member SeriesID = %v, want nil after series delete", *got.SeriesID)
	}
	if got.EpisodeNumber != 0 {
		t.Errorf("member EpisodeNumber = %d, want 0 after series delete", got.EpisodeNumber)
	}
}

func TestSeriesDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteSeries(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteSeries() error = %v, want ErrNotFound", err)
	}
}
