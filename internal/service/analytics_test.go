package service

import (
	"context"
	"testing"

	"github.com/sakif/scriptgenie/internal/model"
)

// fakeAnalyticsRepo returns a fixed set of rows.
type fakeAnalyticsRepo struct {
	rows []model.ScriptAnalytics
	err  error
}

func (f *fakeAnalyticsRepo) ListAnalytics(ctx context.Context, userID string) ([]model.ScriptAnalytics, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func TestAnalyticsSummary_Aggregates(t *testing.T) {
	repo := &fakeAnalyticsRepo{rows: []model.ScriptAnalytics{
		{ID: "a1", ScriptID: "s1", Views: 1000, Likes: 100, Comments: 10, Platform: "youtube"},
		{ID: "a2", ScriptID: "s2", Views: 500, Likes: 900, Comments: 5, Platform: "instagram"},
		{ID: "a3", ScriptID: "s3", Views: 300, Likes: 30, Comments: 3, Platform: "youtube"},
	}}
	svc := NewAnalyticsService(repo)

	summary, err := svc.Summary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if summary.TotalViews != 1800 {
		t.Errorf("TotalViews = %d, want 1800", summary.TotalViews)
	}
	if summary.TotalLikes != 1030 {
		t.Errorf("TotalLikes = %d, want 1030", summary.TotalLikes)
	}
	if summary.TotalComments != 18 {
		t.Errorf("TotalComments = %d, want 18", summary.TotalComments)
	}
	if summary.AverageViews != 600 {
		t.Errorf("AverageViews = %d, want 600", summary.AverageViews)
	}
	if summary.PlatformViews["youtube"] != 1300 {
		t.Errorf("PlatformViews[youtube] = %d, want 1300", summary.PlatformViews["youtube"])
	}
	if summary.PlatformViews["instagram"] != 500 {
		t.Errorf("PlatformViews[instagram] = %d, want 500", summary.PlatformViews["instagram"])
	}

	// Ranked by views + likes: s2 (1400) beats s1 (1100) beats s3 (330).
	if len(summary.TopScripts) != 3 {
		t.Fatalf("TopScripts has %d rows, want 3", len(summary.TopScripts))
	}
	if summary.TopScripts[0].ScriptID != "s2" {
		t.Errorf("TopScripts[0] = %s, want s2 (likes count toward rank)", summary.TopScripts[0].ScriptID)
	}
}

func TestAnalyticsSummary_CapsTopScripts(t *testing.T) {
	rows := make([]model.ScriptAnalytics, 8)
	for i := range rows {
		rows[i] = model.ScriptAnalytics{ID: "a", Views: int64(i)}
	}
	svc := NewAnalyticsService(&fakeAnalyticsRepo{rows: rows})

	summary, err := svc.Summary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if len(summary.TopScripts) != topScriptsCount {
		t.Errorf("TopScripts has %d rows, want %d", len(summary.TopScripts), topScriptsCount)
	}
}

func TestAnalyticsSummary_EmptyRows(t *testing.T) {
	svc := NewAnalyticsService(&fakeAnalyticsRepo{})

	summary, err := svc.Summary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	// Zero rows means zero everything — and no divide-by-zero on the average.
	if summary.AverageViews != 0 || summary.TotalViews != 0 {
		t.Errorf("summary = %+v, want all zeros", summary)
	}
	if summary.TopScripts == nil || summary.PlatformViews == nil {
		t.Error("empty summary must use empty collections, not nil")
	}
}
