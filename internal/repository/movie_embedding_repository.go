package repository

import "context"

// SimilarMovie is the result of a vector similarity search: the movie ID and
// a cosine similarity in [0, 1].
type SimilarMovie struct {
	MovieID    int64
	Similarity float64
}

// MovieEmbeddingRepository reads pre-computed movie embeddings. The engine
// never writes embeddings; generation belongs to the ingestion pipeline.
type MovieEmbeddingRepository interface {
	// EmbeddingsByMovieIDs returns the stored vectors for the given movies,
	// keyed by movie ID. Movies without an embedding are simply absent.
	EmbeddingsByMovieIDs(ctx context.Context, ids []int64) (map[int64][]float32, error)
	// NearestToVector returns the movies whose embeddings are closest to the
	// query vector by cosine distance, best first, skipping excluded IDs.
	NearestToVector(ctx context.Context, vec []float32, limit int, exclude []int64) ([]SimilarMovie, error)
}
