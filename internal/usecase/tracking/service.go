// Package tracking implements the recommendation feedback loop: exposure
// events for every served item and idempotent outcome updates used to
// compare strategy performance.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cinerec/internal/domain/entity"
	"cinerec/internal/observability/metrics"
	"cinerec/internal/repository"
)

// Outcome is a user reaction to an exposed recommendation.
type Outcome string

// Outcomes accepted by RecordOutcome.
const (
	OutcomeClick      Outcome = "click"
	OutcomeRating     Outcome = "rating"
	OutcomeThumbsUp   Outcome = "thumbs_up"
	OutcomeThumbsDown Outcome = "thumbs_down"
	OutcomeFavorite   Outcome = "favorite"
	OutcomeWatchlist  Outcome = "watchlist"
)

// exposureWriteTimeout bounds the background exposure batch write.
const exposureWriteTimeout = 5 * time.Second

var (
	// ErrInvalidOutcome is returned for an unknown outcome kind.
	ErrInvalidOutcome = errors.New("invalid outcome")

	// ErrInvalidRating is returned when a rating outcome carries a value
	// outside [0.5, 5].
	ErrInvalidRating = errors.New("invalid rating value")
)

// Service records exposures and outcomes and aggregates strategy
// performance.
type Service struct {
	Events repository.EventRepository
	Logger *slog.Logger

	// Now is overridable in tests.
	Now func() time.Time
}

// RecordExposure stores one exposure event and returns its ID.
func (s *Service) RecordExposure(ctx context.Context, userID, movieID int64, algorithm string, position int, score float64) (string, error) {
	event := &entity.RecommendationEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		MovieID:   movieID,
		Algorithm: algorithm,
		Position:  position,
		Score:     score,
		CreatedAt: s.now(),
	}
	if err := s.Events.Insert(ctx, event); err != nil {
		return "", fmt.Errorf("insert exposure event: %w", err)
	}
	metrics.RecordRecommendationEvent("exposure")
	return event.ID, nil
}

// RecordExposures stores one event per served item, position preserving.
// Write failures are logged and skipped so a partial batch still lands.
// Satisfies the recommend orchestrator's exposure hook.
func (s *Service) RecordExposures(ctx context.Context, userID int64, recs []entity.Recommendation) {
	ctx, cancel := context.WithTimeout(ctx, exposureWriteTimeout)
	defer cancel()

	for i, r := range recs {
		if _, err := s.RecordExposure(ctx, userID, r.MovieID, r.Strategy, i+1, r.Score); err != nil {
			s.logger().WarnContext(ctx, "record exposure failed",
				"user_id", userID, "movie_id", r.MovieID, "error", err)
		}
	}
}

// RecordOutcome applies one outcome to the most recent event for the
// (user, movie) pair. An outcome without a matching exposure is a no-op:
// the user may have found the movie outside the recommendation surface.
// Repeated outcomes are idempotent; thumbs outcomes toggle.
func (s *Service) RecordOutcome(ctx context.Context, userID, movieID int64, outcome Outcome, value float64) error {
	if outcome == OutcomeRating && (value < 0.5 || value > 5) {
		return ErrInvalidRating
	}

	event, err := s.Events.LatestOpen(ctx, userID, movieID)
	if err != nil {
		return fmt.Errorf("find exposure event: %w", err)
	}
	if event == nil {
		return nil
	}

	at := s.now()
	switch outcome {
	case OutcomeClick:
		event.ApplyClick(at)
	case OutcomeRating:
		event.ApplyRating(value, at)
	case OutcomeThumbsUp:
		event.ApplyThumbsUp(at)
	case OutcomeThumbsDown:
		event.ApplyThumbsDown(at)
	case OutcomeFavorite:
		event.AddedToFavorites = true
	case OutcomeWatchlist:
		event.AddedToWatchlist = true
	default:
		return ErrInvalidOutcome
	}

	if err := s.Events.UpdateOutcome(ctx, event); err != nil {
		return fmt.Errorf("update event outcome: %w", err)
	}
	metrics.RecordRecommendationEvent(string(outcome))
	return nil
}

// StrategyReport is the per-strategy performance summary.
type StrategyReport struct {
	Algorithm     string   `json:"algorithm"`
	Exposures     int64    `json:"exposures"`
	Clicks        int64    `json:"clicks"`
	ClickRate     float64  `json:"click_rate"`
	Ratings       int64    `json:"ratings"`
	AvgRating     *float64 `json:"avg_rating,omitempty"`
	ThumbsUp      int64    `json:"thumbs_up"`
	ThumbsDown    int64    `json:"thumbs_down"`
	ThumbsUpRate  float64  `json:"thumbs_up_rate"`
	SatisfiedRate float64  `json:"satisfied_rate"`
}

// Performance aggregates events from the trailing window into per-strategy
// reports. An empty algorithm covers all strategies.
func (s *Service) Performance(ctx context.Context, algorithm string, windowDays int) ([]StrategyReport, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	since := s.now().AddDate(0, 0, -windowDays)

	rows, err := s.Events.Aggregate(ctx, algorithm, since)
	if err != nil {
		return nil, fmt.Errorf("aggregate events: %w", err)
	}

	reports := make([]StrategyReport, 0, len(rows))
	for _, row := range rows {
		r := StrategyReport{
			Algorithm:  row.Algorithm,
			Exposures:  row.Exposures,
			Clicks:     row.Clicks,
			Ratings:    row.Ratings,
			AvgRating:  row.AvgRating,
			ThumbsUp:   row.ThumbsUp,
			ThumbsDown: row.ThumbsDown,
		}
		if row.Exposures > 0 {
			r.ClickRate = float64(row.Clicks) / float64(row.Exposures)
			r.ThumbsUpRate = float64(row.ThumbsUp) / float64(row.Exposures)
		}
		if voted := row.ThumbsUp + row.ThumbsDown; voted > 0 {
			r.SatisfiedRate = float64(row.ThumbsUp) / float64(voted)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
