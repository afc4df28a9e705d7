// Package entity defines the core domain entities and validation logic for the
// recommendation engine: catalog items, user interactions, recommendation
// events and model update audit records.
package entity

import "time"

// Movie represents a catalog item as the engine sees it.
// Genres is always a normalized list of strings; the persistence adapter is
// responsible for decoding whatever representation the catalog stores.
type Movie struct {
	ID          int64
	Title       string
	Genres      []string
	VoteCount   int64
	VoteAverage float64
	Popularity  float64
}

// HasGenre reports whether the movie carries the given genre.
func (m *Movie) HasGenre(genre string) bool {
	for _, g := range m.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// OnlyDislikedGenres reports whether every genre of the movie is in the
// disliked set. Movies without genre data are never considered disliked-only.
func (m *Movie) OnlyDislikedGenres(disliked map[string]bool) bool {
	if len(m.Genres) == 0 || len(disliked) == 0 {
		return false
	}
	for _, g := range m.Genres {
		if !disliked[g] {
			return false
		}
	}
	return true
}

// ModelUpdateLog is an append-only audit record for one model rebuild attempt.
type ModelUpdateLog struct {
	ID                    int64
	UpdateType            string
	Trigger               string
	InteractionsProcessed int64
	ExplainedVariance     float64
	Duration              time.Duration
	Success               bool
	ErrorMessage          string
	CreatedAt             time.Time
}
