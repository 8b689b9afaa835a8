package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/sakif/scriptgenie/internal/model"
	"github.com/sakif/scriptgenie/internal/repository"
)

// topScriptsCount is how many best-performing rows the summary includes.
const topScriptsCount = 5

// AnalyticsService aggregates the performance rows for the dashboard.
// The rows themselves are written by an external ingestion job — this
// service only reads and shapes them.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
}

func NewAnalyticsService(analytics repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analytics: analytics}
}

// List returns the raw analytics rows for a user, newest publication first.
func (s *AnalyticsService) List(ctx context.Context, userID string) ([]model.ScriptAnalytics, error) {
	rows, err := s.analytics.ListAnalytics(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/analytics: listing analytics: %w", err)
	}
	return rows, nil
}

// Summary computes the dashboard aggregate: totals, average views per row,
// per-platform view counts, and the top scripts ranked by views + likes.
//
// Done in Go rather than SQL: the per-user row counts are small, and the
// ranking rule (views + likes) is business logic that belongs where it can
// be unit-tested without a database.
func (s *AnalyticsService) Summary(ctx context.Context, userID string) (*model.AnalyticsSummary, error) {
	rows, err := s.analytics.ListAnalytics(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/analytics: listing analytics: %w", err)
	}

	summary := &model.AnalyticsSummary{
		PlatformViews: map[string]int64{},
		TopScripts:    []model.ScriptAnalytics{},
	}

	for _, row := range rows {
		summary.TotalViews += row.Views
		summary.TotalLikes += row.Likes
		summary.TotalComments += row.Comments
		if row.Platform != "" {
			summary.PlatformViews[row.Platform] += row.Views
		}
	}
	if len(rows) > 0 {
		summary.AverageViews = summary.TotalViews / int64(len(rows))
	}

	ranked := make([]model.ScriptAnalytics, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Views+ranked[i].Likes > ranked[j].Views+ranked[j].Likes
	})
	if len(ranked) > topScriptsCount {
		ranked = ranked[:topScriptsCount]
	}
	summary.TopScripts = ranked

	return summary, nil
}
