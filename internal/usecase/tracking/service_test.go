package tracking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinerec/internal/domain/entity"
	"cinerec/internal/repository"
	"cinerec/internal/usecase/tracking"
)

type stubEventRepo struct {
	events     []*entity.RecommendationEvent
	insertErr  error
	aggregates []repository.StrategyPerformance
}

func (s *stubEventRepo) Insert(_ context.Context, event *entity.RecommendationEvent) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubEventRepo) LatestOpen(_ context.Context, userID, movieID int64) (*entity.RecommendationEvent, error) {
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].UserID == userID && s.events[i].MovieID == movieID {
			return s.events[i], nil
		}
	}
	return nil, nil
}

func (s *stubEventRepo) UpdateOutcome(_ context.Context, event *entity.RecommendationEvent) error {
	for i, e := range s.events {
		if e.ID == event.ID {
			s.events[i] = event
			return nil
		}
	}
	return errors.New("event not found")
}

func (s *stubEventRepo) Aggregate(_ context.Context, _ string, _ time.Time) ([]repository.StrategyPerformance, error) {
	return s.aggregates, nil
}

func newService(repo *stubEventRepo) *tracking.Service {
	return &tracking.Service{Events: repo}
}

func TestRecordExposure(t *testing.T) {
	repo := &stubEventRepo{}
	svc := newService(repo)

	id, err := svc.RecordExposure(context.Background(), 1, 42, entity.StrategyLatent, 3, 4.2)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, repo.events, 1)
	event := repo.events[0]
	assert.Equal(t, id, event.ID)
	assert.Equal(t, int64(42), event.MovieID)
	assert.Equal(t, entity.StrategyLatent, event.Algorithm)
	assert.Equal(t, 3, event.Position)
}

func TestRecordExposuresPreservesPositions(t *testing.T) {
	repo := &stubEventRepo{}
	svc := newService(repo)

	svc.RecordExposures(context.Background(), 1, []entity.Recommendation{
		{MovieID: 10, Score: 4.5, Strategy: entity.StrategyLatent},
		{MovieID: 20, Score: 3.9, Strategy: entity.StrategyContent},
	})

	require.Len(t, repo.events, 2)
	assert.Equal(t, 1, repo.events[0].Position)
	assert.Equal(t, 2, repo.events[1].Position)
	assert.Equal(t, entity.StrategyContent, repo.events[1].Algorithm)
}

func TestRecordOutcomeClickIsIdempotent(t *testing.T) {
	repo := &stubEventRepo{}
	svc := newService(repo)
	_, err := svc.RecordExposure(context.Background(), 1, 42, entity.StrategyLatent, 1, 4.0)
	require.NoError(t, err)

	require.NoError(t, svc.RecordOutcome(context.Background(), 1, 42, tracking.OutcomeClick, 0))
	first := *repo.events[0].ClickedAt

	require.NoError(t, svc.RecordOutcome(context.Background(), 1, 42, tracking.OutcomeClick, 0))
	assert.True(t, repo.events[0].Clicked)
	assert.Equal(t, first, *repo.events[0].ClickedAt, "first click timestamp is kept")
}

func TestRecordOutcomeRatingUpdatesValue(t *testing.T) {
	repo := &stubEventRepo{}
	svc := newService(repo)
	_, err := svc.RecordExposure(context.Background(), 1, 42, entity.StrategyLatent, 1, 4.0)
	require.NoError(t, err)

	require.NoError(t, svc.RecordOutcome(context.Background(), 1, 42, tracking.OutcomeRating, 3.0))
	require.NoError(t, svc.RecordOutcome(context.Background(), 1, 42, tracking.OutcomeRating, 4.5))

	event := repo.events[0]
	assert.True(t, event.Rated)
	assert.Equal(t, 4.5, *event.RatingValue, "re-rating updates the value")
}

func TestRecordOutcomeRejectsBadRating(t *testing.T) {
	svc := newService(&stubEventRepo{})
	err := svc.RecordOutcome(context.Background(), 1, 42, tracking.OutcomeRating, 7)
	assert.ErrorIs(t, err, tracking.ErrInvalidRating)
}

func TestRecordOutcomeThumbsToggle(t *testing.T) {
	repo := &stubEventRepo{}
	svc := newService(repo)
	_, err := svc.RecordExposure(context.Background(), 1, 42, entity.StrategyLatent, 1, 4.0)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.RecordOutcome(ctx, 1, 42, tracking.OutcomeThumbsUp, 0))
	assert.True(t, repo.events[0].ThumbsUp)

	// Switching sides clears the other vote.
	require.NoError(t, svc.RecordOutcome(ctx, 1, 42, tracking.OutcomeThumbsDown, 0))
	assert.False(t, repo.events[0].ThumbsUp)
	assert.True(t, repo.events[0].ThumbsDown)

	// Re-sending the active vote retracts it.
	require.NoError(t, svc.RecordOutcome(ctx, 1, 42, tracking.OutcomeThumbsDown, 0))
	assert.False(t, repo.events[0].ThumbsUp)
	assert.False(t, repo.events[0].ThumbsDown)
}

func TestRecordOutcomeWithoutExposureIsNoOp(t *testing.T) {
	repo := &stubEventRepo{}
	svc := newService(repo)

	err := svc.RecordOutcome(context.Background(), 1, 42, tracking.OutcomeClick, 0)
	assert.NoError(t, err, "outcomes for never-exposed movies are silently accepted")
	assert.Empty(t, repo.events)
}

func TestRecordOutcomeUnknownKind(t *testing.T) {
	repo := &stubEventRepo{}
	svc := newService(repo)
	_, err := svc.RecordExposure(context.Background(), 1, 42, entity.StrategyLatent, 1, 4.0)
	require.NoError(t, err)

	err = svc.RecordOutcome(context.Background(), 1, 42, tracking.Outcome("bogus"), 0)
	assert.ErrorIs(t, err, tracking.ErrInvalidOutcome)
}

func TestPerformanceComputesRates(t *testing.T) {
	avg := 4.2
	repo := &stubEventRepo{aggregates: []repository.StrategyPerformance{
		{Algorithm: entity.StrategyLatent, Exposures: 100, Clicks: 25, Ratings: 10, AvgRating: &avg, ThumbsUp: 9, ThumbsDown: 3},
		{Algorithm: entity.StrategyPopular, Exposures: 0},
	}}
	svc := newService(repo)

	reports, err := svc.Performance(context.Background(), "", 30)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	latent := reports[0]
	assert.InDelta(t, 0.25, latent.ClickRate, 1e-9)
	assert.InDelta(t, 0.09, latent.ThumbsUpRate, 1e-9)
	assert.InDelta(t, 0.75, latent.SatisfiedRate, 1e-9)
	assert.Equal(t, &avg, latent.AvgRating)

	assert.Zero(t, reports[1].ClickRate, "zero exposures never divide")
}

var _ repository.EventRepository = (*stubEventRepo)(nil)
