package repository

import (
	"context"

	"cinerec/internal/domain/entity"
)

// MovieRepository provides read access to item metadata. Genre fields are
// normalized to a list of strings at this boundary regardless of how the
// catalog encodes them.
type MovieRepository interface {
	// Get returns one movie by ID, or nil if it does not exist.
	Get(ctx context.Context, id int64) (*entity.Movie, error)
	// GetBatch returns the movies for the given IDs, keyed by ID. Missing
	// IDs are absent from the map, not an error.
	GetBatch(ctx context.Context, ids []int64) (map[int64]*entity.Movie, error)
	// ListCandidates returns movies meeting the vote-count floor, the
	// candidate pool for the scoring strategies.
	ListCandidates(ctx context.Context, minVoteCount int64) ([]*entity.Movie, error)
	// ListPopular returns movies with vote_count >= minVoteCount ordered by
	// vote_average descending, skipping excluded IDs.
	ListPopular(ctx context.Context, minVoteCount int64, limit int, exclude []int64) ([]*entity.Movie, error)
}
