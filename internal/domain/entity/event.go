package entity

import "time"

// RecommendationEvent records one exposure of one movie to one user at one
// list position. Outcome fields are mutated in place when the user acts on
// the recommendation; events are never deleted.
type RecommendationEvent struct {
	ID        string
	UserID    int64
	MovieID   int64
	Algorithm string
	Position  int
	Score     float64

	Clicked   bool
	ClickedAt *time.Time

	Rated       bool
	RatedAt     *time.Time
	RatingValue *float64

	AddedToFavorites bool
	AddedToWatchlist bool

	ThumbsUp     bool
	ThumbsUpAt   *time.Time
	ThumbsDown   bool
	ThumbsDownAt *time.Time

	CreatedAt time.Time
}

// ApplyClick marks the event clicked. The first click timestamp is kept on
// repeated calls, making retries safe.
func (e *RecommendationEvent) ApplyClick(at time.Time) {
	if e.Clicked {
		return
	}
	e.Clicked = true
	e.ClickedAt = &at
}

// ApplyRating marks the event rated. Repeated calls update the rating value
// but keep the first rated-at timestamp.
func (e *RecommendationEvent) ApplyRating(value float64, at time.Time) {
	if !e.Rated {
		e.Rated = true
		e.RatedAt = &at
	}
	e.RatingValue = &value
}

// ApplyThumbsUp toggles the thumbs-up flag. Activating it clears a previous
// thumbs-down; re-activating an already-set thumbs-up clears both.
func (e *RecommendationEvent) ApplyThumbsUp(at time.Time) {
	if e.ThumbsUp {
		e.ThumbsUp = false
		e.ThumbsUpAt = nil
		return
	}
	e.ThumbsUp = true
	e.ThumbsUpAt = &at
	e.ThumbsDown = false
	e.ThumbsDownAt = nil
}

// ApplyThumbsDown toggles the thumbs-down flag, clearing thumbs-up on
// activation and clearing both on re-activation.
func (e *RecommendationEvent) ApplyThumbsDown(at time.Time) {
	if e.ThumbsDown {
		e.ThumbsDown = false
		e.ThumbsDownAt = nil
		return
	}
	e.ThumbsDown = true
	e.ThumbsDownAt = &at
	e.ThumbsUp = false
	e.ThumbsUpAt = nil
}
