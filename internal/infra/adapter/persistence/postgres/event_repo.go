package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cinerec/internal/domain/entity"
	"cinerec/internal/repository"
)

type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) repository.EventRepository {
	return &EventRepo{db: db}
}

const eventColumns = `id, user_id, movie_id, algorithm, position, score,
	clicked, clicked_at, rated, rated_at, rating_value,
	added_to_favorites, added_to_watchlist,
	thumbs_up, thumbs_up_at, thumbs_down, thumbs_down_at, created_at`

func (repo *EventRepo) Insert(ctx context.Context, event *entity.RecommendationEvent) error {
	const query = `
INSERT INTO recommendation_events (id, user_id, movie_id, algorithm, position, score, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, query,
		event.ID, event.UserID, event.MovieID,
		event.Algorithm, event.Position, event.Score, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

func (repo *EventRepo) LatestOpen(ctx context.Context, userID, movieID int64) (*entity.RecommendationEvent, error) {
	const query = `
SELECT ` + eventColumns + `
FROM recommendation_events
WHERE user_id = $1 AND movie_id = $2
ORDER BY created_at DESC
LIMIT 1`

	var e entity.RecommendationEvent
	var ratingValue sql.NullFloat64
	err := repo.db.QueryRowContext(ctx, query, userID, movieID).Scan(
		&e.ID, &e.UserID, &e.MovieID, &e.Algorithm, &e.Position, &e.Score,
		&e.Clicked, &e.ClickedAt, &e.Rated, &e.RatedAt, &ratingValue,
		&e.AddedToFavorites, &e.AddedToWatchlist,
		&e.ThumbsUp, &e.ThumbsUpAt, &e.ThumbsDown, &e.ThumbsDownAt, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestOpen: %w", err)
	}
	if ratingValue.Valid {
		e.RatingValue = &ratingValue.Float64
	}
	return &e, nil
}

func (repo *EventRepo) UpdateOutcome(ctx context.Context, event *entity.RecommendationEvent) error {
	const query = `
UPDATE recommendation_events
SET clicked = $2, clicked_at = $3,
    rated = $4, rated_at = $5, rating_value = $6,
    added_to_favorites = $7, added_to_watchlist = $8,
    thumbs_up = $9, thumbs_up_at = $10,
    thumbs_down = $11, thumbs_down_at = $12
WHERE id = $1`
	result, err := repo.db.ExecContext(ctx, query,
		event.ID,
		event.Clicked, event.ClickedAt,
		event.Rated, event.RatedAt, event.RatingValue,
		event.AddedToFavorites, event.AddedToWatchlist,
		event.ThumbsUp, event.ThumbsUpAt,
		event.ThumbsDown, event.ThumbsDownAt)
	if err != nil {
		return fmt.Errorf("UpdateOutcome: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateOutcome: RowsAffected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("UpdateOutcome: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *EventRepo) Aggregate(ctx context.Context, algorithm string, since time.Time) ([]repository.StrategyPerformance, error) {
	query := `
SELECT algorithm,
       COUNT(*) AS exposures,
       COUNT(*) FILTER (WHERE clicked) AS clicks,
       COUNT(*) FILTER (WHERE rated) AS ratings,
       COUNT(*) FILTER (WHERE thumbs_up) AS thumbs_up,
       COUNT(*) FILTER (WHERE thumbs_down) AS thumbs_down,
       AVG(rating_value) FILTER (WHERE rated) AS avg_rating
FROM recommendation_events
WHERE created_at >= $1`
	args := []any{since}
	if algorithm != "" {
		query += ` AND algorithm = $2`
		args = append(args, algorithm)
	}
	query += `
GROUP BY algorithm
ORDER BY exposures DESC`

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Aggregate: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]repository.StrategyPerformance, 0, 8)
	for rows.Next() {
		var p repository.StrategyPerformance
		var avg sql.NullFloat64
		if err := rows.Scan(&p.Algorithm, &p.Exposures, &p.Clicks,
			&p.Ratings, &p.ThumbsUp, &p.ThumbsDown, &avg); err != nil {
			return nil, fmt.Errorf("Aggregate: Scan: %w", err)
		}
		if avg.Valid {
			p.AvgRating = &avg.Float64
		}
		results = append(results, p)
	}
	return results, rows.Err()
}
