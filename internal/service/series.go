package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/scriptgenie/internal/apperror"
	"github.com/sakif/scriptgenie/internal/model"
	"github.com/sakif/scriptgenie/internal/repository"
)

const (
	seriesNameMaxLength        = 200
	seriesDescriptionMaxLength = 1000
)

// SeriesService owns the business rules for video series (script groupings).
type SeriesService struct {
	series repository.SeriesRepository
	logger *slog.Logger
}

func NewSeriesService(series repository.SeriesRepository, logger *slog.Logger) *SeriesService {
	return &SeriesService{series: series, logger: logger}
}

// SeriesInput carries the user-editable fields of a series.
type SeriesInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ColorTheme  string `json:"colorTheme"`
}

func (in *SeriesInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.ValidationFailed("name", "Series name is required")
	}
	if utf8.RuneCountInString(in.Name) > seriesNameMaxLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("Series name must be at most %d characters", seriesNameMaxLength))
	}
	if utf8.RuneCountInString(in.Description) > seriesDescriptionMaxLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("Description must be at most %d characters", seriesDescriptionMaxLength))
	}
	return nil
}

// Create saves a new series for the user.
// ColorTheme defaults in the repository when empty.
func (s *SeriesService) Create(ctx context.Context, userID string, in SeriesInput) (*model.VideoSeries, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	series := &model.VideoSeries{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ColorTheme:  in.ColorTheme,
	}
	if err := s.series.CreateSeries(ctx, series); err != nil {
		return nil, fmt.Errorf("service/series: creating series: %w", err)
	}
	return series, nil
}

// Get returns one series, owner-only.
func (s *SeriesService) Get(ctx context.Context, userID, seriesID string) (*model.VideoSeries, error) {
	return s.getOwned(ctx, userID, seriesID)
}

// List returns the user's series, newest first, with script counts.
func (s *SeriesService) List(ctx context.Context, userID string) ([]model.VideoSeries, error) {
	list, err := s.series.ListSeries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/series: listing series: %w", err)
	}
	return list, nil
}

// Update applies the editable fields to an owned series.
func (s *SeriesService) Update(ctx context.Context, userID, seriesID string, in SeriesInput) (*model.VideoSeries, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	series, err := s.getOwned(ctx, userID, seriesID)
	if err != nil {
		return nil, err
	}

	series.Name = strings.TrimSpace(in.Name)
	series.Description = in.Description
	if in.ColorTheme != "" {
		series.ColorTheme = in.ColorTheme
	}

	if err := s.series.UpdateSeries(ctx, series); err != nil {
		return nil, fmt.Errorf("service/series: updating series %s: %w", seriesID, err)
	}
	return series, nil
}

// Delete removes an owned series. Member scripts survive — the repository
// detaches them in the same transaction as the delete.
func (s *SeriesService) Delete(ctx context.Context, userID, seriesID string) error {
	if _, err := s.getOwned(ctx, userID, seriesID); err != nil {
		return err
	}
	if err := s.series.DeleteSeries(ctx, seriesID); err != nil {
		return fmt.Errorf("service/series: deleting series %s: %w", seriesID, err)
	}

	s.logger.Info("series deleted",
		slog.String("seriesID", seriesID),
		slog.String("userID", userID),
	)
	return nil
}

func (s *SeriesService) getOwned(ctx context.Context, userID, seriesID string) (*model.VideoSeries, error) {
	series, err := s.series.GetSeriesByID(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if series.UserID != userID {
		return nil, apperror.Forbidden("You do not have access to this series")
	}
	return series, nil
}
