package entity

import "time"

// Signal identifies the kind of interaction a user had with a movie.
type Signal string

// Supported interaction signals.
const (
	SignalRating     Signal = "rating"
	SignalFavorite   Signal = "favorite"
	SignalWatchlist  Signal = "watchlist"
	SignalThumbsUp   Signal = "thumbs_up"
	SignalThumbsDown Signal = "thumbs_down"
)

// Implicit signal strengths on the 0.5-5.0 rating scale.
const (
	favoriteImpliedRating   = 4.5
	watchlistImpliedRating  = 3.5
	thumbsUpImpliedRating   = 5.0
	thumbsDownImpliedRating = 0.5
)

// Interaction is one append-only record of a user acting on a movie.
// Value carries the star rating for SignalRating and is ignored otherwise.
type Interaction struct {
	UserID    int64
	MovieID   int64
	Signal    Signal
	Value     float64
	Timestamp time.Time
}

// MatrixValue maps the interaction onto the rating scale used when building
// the interaction matrix. Explicit ratings keep their value; implicit signals
// use fixed strengths.
func (i *Interaction) MatrixValue() float64 {
	switch i.Signal {
	case SignalRating:
		return i.Value
	case SignalFavorite:
		return favoriteImpliedRating
	case SignalWatchlist:
		return watchlistImpliedRating
	case SignalThumbsUp:
		return thumbsUpImpliedRating
	case SignalThumbsDown:
		return thumbsDownImpliedRating
	}
	return 0
}

// IsPositive reports whether the interaction expresses liking the movie.
// Ratings count from 3.5 stars up.
func (i *Interaction) IsPositive() bool {
	switch i.Signal {
	case SignalRating:
		return i.Value >= 3.5
	case SignalFavorite, SignalWatchlist, SignalThumbsUp:
		return true
	}
	return false
}

// IsNegative reports whether the interaction expresses disliking the movie.
// Ratings of 2 stars or less count as negative.
func (i *Interaction) IsNegative() bool {
	switch i.Signal {
	case SignalRating:
		return i.Value <= 2.0
	case SignalThumbsDown:
		return true
	}
	return false
}

// SeedWeight is the weight of this interaction when it is used as a seed in
// similarity-based scoring. Negative and unknown signals carry no weight.
func (i *Interaction) SeedWeight() float64 {
	switch i.Signal {
	case SignalRating:
		if i.Value >= 3.5 {
			return i.Value / 5.0
		}
		return 0
	case SignalThumbsUp:
		return 1.0
	case SignalFavorite:
		return 0.9
	case SignalWatchlist:
		return 0.7
	}
	return 0
}

// ProfileWeight is the genre-profile contribution of this interaction:
// strong likes weigh 1.0, favorites 0.8, watchlist 0.5, and negative signals
// contribute -1.0 (the genre is also excluded by the content model).
func (i *Interaction) ProfileWeight() float64 {
	switch i.Signal {
	case SignalRating:
		switch {
		case i.Value >= 4.0:
			return 1.0
		case i.Value <= 2.0:
			return -1.0
		default:
			return 0
		}
	case SignalFavorite:
		return 0.8
	case SignalWatchlist:
		return 0.5
	case SignalThumbsUp:
		return 1.0
	case SignalThumbsDown:
		return -1.0
	}
	return 0
}
