// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Language is the target language a script is generated in.
//
// WHY A NAMED STRING TYPE?
// Using `type Language string` instead of a bare string gives us a place to
// hang validation (Valid()) and makes function signatures self-documenting:
// GenerateScript(topic string, lang Language, ...) reads better than three strings.
// The compiler still allows any string to be converted, so Valid() must be
// checked at the input boundary.
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageBengali Language = "bengali"
	LanguageHindi   Language = "hindi"
)

// Valid reports whether the language is one of the supported values.
func (l Language) Valid() bool {
	switch l {
	case LanguageEnglish, LanguageBengali, LanguageHindi:
		return true
	}
	return false
}

// ScriptType selects the structure of the generated script.
type ScriptType string

const (
	ScriptTypeExplainer ScriptType = "explainer"
	ScriptTypeNarrative ScriptType = "narrative"
	ScriptTypeOutline   ScriptType = "outline"
)

// Valid reports whether the script type is one of the supported values.
func (t ScriptType) Valid() bool {
	switch t {
	case ScriptTypeExplainer, ScriptTypeNarrative, ScriptTypeOutline:
		return true
	}
	return false
}

// Script represents a generated script saved by a user.
//
// The `json:"..."` tags tell Go's encoding/json package how to serialize/deserialize
// this struct to/from JSON.
//
// SeriesID is a *string (nullable): a script may or may not belong to a series.
// When a series is deleted, members keep existing with SeriesID set back to nil —
// there is deliberately no cascade delete.
//
// ShareToken is empty until the owner shares the script; once set (and IsPublic
// is true) the script can be fetched by anyone who knows the token.
type Script struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Topic         string     `json:"topic"`
	Language      Language   `json:"language"`
	ScriptType    ScriptType `json:"scriptType"`
	Content       string     `json:"content"`
	SeriesID      *string    `json:"seriesId"`
	EpisodeNumber int        `json:"episodeNumber"` // 0 = not part of an ordered series
	ShareToken    string     `json:"shareToken,omitempty"`
	IsPublic      bool       `json:"isPublic"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
