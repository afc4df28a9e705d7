package repository

import (
	"context"
	"time"

	"cinerec/internal/domain/entity"
)

// StrategyPerformance aggregates outcome counts for one strategy tag.
type StrategyPerformance struct {
	Algorithm  string
	Exposures  int64
	Clicks     int64
	Ratings    int64
	ThumbsUp   int64
	ThumbsDown int64
	AvgRating  *float64
}

// EventRepository persists recommendation exposure events and their outcome
// mutations. Events are created once per exposed item and never deleted.
type EventRepository interface {
	// Insert stores a new exposure event.
	Insert(ctx context.Context, event *entity.RecommendationEvent) error
	// LatestOpen returns the most recent event for the (user, movie) pair,
	// or nil when the pair was never exposed.
	LatestOpen(ctx context.Context, userID, movieID int64) (*entity.RecommendationEvent, error)
	// UpdateOutcome persists the outcome fields of an existing event.
	UpdateOutcome(ctx context.Context, event *entity.RecommendationEvent) error
	// Aggregate returns per-strategy performance for events created at or
	// after since. An empty algorithm aggregates all strategies.
	Aggregate(ctx context.Context, algorithm string, since time.Time) ([]StrategyPerformance, error)
}

// ModelUpdateRepository persists the append-only model rebuild audit trail.
type ModelUpdateRepository interface {
	// Append stores one rebuild attempt record.
	Append(ctx context.Context, log *entity.ModelUpdateLog) error
	// Recent returns the latest records, newest first.
	Recent(ctx context.Context, limit int) ([]*entity.ModelUpdateLog, error)
	// LastProcessed returns the interactions_processed value of the most
	// recent successful rebuild, or 0 when none succeeded yet.
	LastProcessed(ctx context.Context) (int64, error)
}
