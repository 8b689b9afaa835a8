package model

import "time"

// VideoSeries is a user-defined grouping of scripts with an ordering
// (Script.EpisodeNumber inside the series).
//
// ScriptCount is DERIVED — it is not a column. The repository fills it in by
// counting scripts with a matching series_id, so it's accurate at read time
// without needing triggers or a counter column to keep in sync.
type VideoSeries struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ColorTheme  string    `json:"colorTheme"`
	ScriptCount int       `json:"scriptCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DefaultColorTheme is applied when a series is created without one.
const DefaultColorTheme = "#8b5cf6"
