package model

import "time"

// ScriptAnalytics is one performance record for a published script.
//
// Rows are written by an external ingestion job (platform scrapers), NOT by
// this server — we only read them for the dashboard. That's why there is no
// Create/Update path for analytics in the service layer.
type ScriptAnalytics struct {
	ID          string    `json:"id"`
	ScriptID    string    `json:"scriptId"`
	UserID      string    `json:"userId"`
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	Comments    int64     `json:"comments"`
	Platform    string    `json:"platform"` // e.g. "youtube", "instagram"; may be empty
	PublishedAt time.Time `json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AnalyticsSummary is the aggregate view the dashboard renders.
// Computed in the service layer from the raw rows — totals, a per-platform
// breakdown of views, and the best-performing scripts ranked by views+likes.
type AnalyticsSummary struct {
	TotalViews    int64            `json:"totalViews"`
	TotalLikes    int64            `json:"totalLikes"`
	TotalComments int64            `json:"totalComments"`
	AverageViews  int64            `json:"averageViews"`
	PlatformViews map[string]int64 `json:"platformViews"`
	TopScripts    []ScriptAnalytics `json:"topScripts"`
}
