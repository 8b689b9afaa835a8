package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/rs/xid"
	"github.com/sakif/scriptgenie/internal/apperror"
	"github.com/sakif/scriptgenie/internal/model"
	"github.com/sakif/scriptgenie/internal/repository"
)

// ScriptService owns the business rules around saved scripts: ownership,
// series membership, and sharing.
//
// OWNERSHIP MODEL:
// Listing is scoped by user ID at the query level. Single-row operations
// fetch first, then compare UserID — a stranger touching someone else's
// script gets 403, not 404 — "you can't do that" and "it doesn't exist"
// are different answers for authenticated users.
type ScriptService struct {
	scripts repository.ScriptRepository
	series  repository.SeriesRepository
	logger  *slog.Logger
}

func NewScriptService(
	scripts repository.ScriptRepository,
	series repository.SeriesRepository,
	logger *slog.Logger,
) *ScriptService {
	return &ScriptService{
		scripts: scripts,
		series:  series,
		logger:  logger,
	}
}

// ScriptInput carries the user-editable fields of a script.
// SeriesID/EpisodeNumber place the script inside a series; a nil SeriesID
// means standalone.
type ScriptInput struct {
	Topic         string           `json:"topic"`
	Language      model.Language   `json:"language"`
	ScriptType    model.ScriptType `json:"scriptType"`
	Content       string           `json:"content"`
	SeriesID      *string          `json:"seriesId"`
	EpisodeNumber int              `json:"episodeNumber"`
}

func (in *ScriptInput) validate() error {
	if strings.TrimSpace(in.Topic) == "" {
		return apperror.ValidationFailed("topic", "Topic is required")
	}
	if utf8.RuneCountInString(in.Topic) > topicMaxLength {
		return apperror.ValidationFailed("topic",
			fmt.Sprintf("Topic must be at most %d characters", topicMaxLength))
	}
	if !in.Language.Valid() {
		return apperror.ValidationFailed("language", "Unknown language")
	}
	if !in.ScriptType.Valid() {
		return apperror.ValidationFailed("scriptType", "Unknown script type")
	}
	return nil
}

// Create saves a script for the user, optionally placing it in a series.
func (s *ScriptService) Create(ctx context.Context, userID string, in ScriptInput) (*model.Script, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkSeriesOwnership(ctx, userID, in.SeriesID); err != nil {
		return nil, err
	}

	script := &model.Script{
		UserID:        userID,
		Topic:         strings.TrimSpace(in.Topic),
		Language:      in.Language,
		ScriptType:    in.ScriptType,
		Content:       in.Content,
		SeriesID:      in.SeriesID,
		EpisodeNumber: in.EpisodeNumber,
	}
	if err := s.scripts.CreateScript(ctx, script); err != nil {
		return nil, fmt.Errorf("service/script: creating script: %w", err)
	}
	return script, nil
}

// Get returns one script, owner-only.
func (s *ScriptService) Get(ctx context.Context, userID, scriptID string) (*model.Script, error) {
	return s.getOwned(ctx, userID, scriptID)
}

// List returns the user's scripts, newest first.
func (s *ScriptService) List(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Script, error) {
	scripts, err := s.scripts.ListScripts(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("service/script: listing scripts: %w", err)
	}
	return scripts, nil
}

// ListBySeries returns the user's scripts in one series, in episode order.
func (s *ScriptService) ListBySeries(ctx context.Context, userID, seriesID string) ([]model.Script, error) {
	scripts, err := s.scripts.ListScriptsBySeries(ctx, userID, seriesID)
	if err != nil {
		return nil, fmt.Errorf("service/script: listing series scripts: %w", err)
	}
	return scripts, nil
}

// Update applies the editable fields to an owned script.
// The share token and public flag are managed via Share/Unshare, never here.
func (s *ScriptService) Update(ctx context.Context, userID, scriptID string, in ScriptInput) (*model.Script, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	script, err := s.getOwned(ctx, userID, scriptID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSeriesOwnership(ctx, userID, in.SeriesID); err != nil {
		return nil, err
	}

	script.Topic = strings.TrimSpace(in.Topic)
	script.Language = in.Language
	script.ScriptType = in.ScriptType
	script.Content = in.Content
	script.SeriesID = in.SeriesID
	script.EpisodeNumber = in.EpisodeNumber

	if err := s.scripts.UpdateScript(ctx, script); err != nil {
		return nil, fmt.Errorf("service/script: updating script %s: %w", scriptID, err)
	}
	return script, nil
}

// Delete removes an owned script.
func (s *ScriptService) Delete(ctx context.Context, userID, scriptID string) error {
	if _, err := s.getOwned(ctx, userID, scriptID); err != nil {
		return err
	}
	if err := s.scripts.DeleteScript(ctx, scriptID); err != nil {
		return fmt.Errorf("service/script: deleting script %s: %w", scriptID, err)
	}
	return nil
}

// Share makes an owned script publicly readable and returns its share token.
// Sharing twice reuses the existing token — links already handed out keep working.
func (s *ScriptService) Share(ctx context.Context, userID, scriptID string) (string, error) {
	script, err := s.getOwned(ctx, userID, scriptID)
	if err != nil {
		return "", err
	}

	if script.ShareToken == "" {
		script.ShareToken = xid.New().String()
	}
	script.IsPublic = true
	if err := s.scripts.UpdateScript(ctx, script); err != nil {
		return "", fmt.Errorf("service/script: sharing script %s: %w", scriptID, err)
	}

	s.logger.Info("script shared",
		slog.String("scriptID", scriptID),
		slog.String("userID", userID),
	)
	return script.ShareToken, nil
}

// Unshare revokes public access. The token is cleared, so re-sharing later
// mints a fresh link — a revoked URL can never come back to life.
func (s *ScriptService) Unshare(ctx context.Context, userID, scriptID string) error {
	script, err := s.getOwned(ctx, userID, scriptID)
	if err != nil {
		return err
	}

	script.ShareToken = ""
	script.IsPublic = false
	if err := s.scripts.UpdateScript(ctx, script); err != nil {
		return fmt.Errorf("service/script: unsharing script %s: %w", scriptID, err)
	}
	return nil
}

// GetShared fetches a publicly shared script by token. No auth involved.
func (s *ScriptService) GetShared(ctx context.Context, token string) (*model.Script, error) {
	if token == "" {
		return nil, apperror.ValidationFailed("token", "Share token is required")
	}
	script, err := s.scripts.GetScriptByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return script, nil
}

// getOwned fetches a script and enforces that userID owns it.
func (s *ScriptService) getOwned(ctx context.Context, userID, scriptID string) (*model.Script, error) {
	script, err := s.scripts.GetScriptByID(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	if script.UserID != userID {
		return nil, apperror.Forbidden("You do not have access to this script")
	}
	return script, nil
}

// checkSeriesOwnership verifies the target series exists and belongs to the
// user before a script is attached to it.
func (s *ScriptService) checkSeriesOwnership(ctx context.Context, userID string, seriesID *string) error {
	if seriesID == nil {
		return nil
	}
	series, err := s.series.GetSeriesByID(ctx, *seriesID)
	if err != nil {
		return err
	}
	if series.UserID != userID {
		return apperror.Forbidden("You do not have access to this series")
	}
	return nil
}
