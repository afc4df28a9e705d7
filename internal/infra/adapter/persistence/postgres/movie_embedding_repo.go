package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"cinerec/internal/repository"
)

// DefaultSearchTimeout is the default timeout for similarity search queries.
const DefaultSearchTimeout = 5 * time.Second

// MovieEmbeddingRepo implements the MovieEmbeddingRepository interface for
// PostgreSQL with the pgvector extension.
type MovieEmbeddingRepo struct {
	db *sql.DB
}

func NewMovieEmbeddingRepo(db *sql.DB) repository.MovieEmbeddingRepository {
	return &MovieEmbeddingRepo{db: db}
}

func (repo *MovieEmbeddingRepo) EmbeddingsByMovieIDs(ctx context.Context, ids []int64) (map[int64][]float32, error) {
	if len(ids) == 0 {
		return map[int64][]float32{}, nil
	}
	query := `
SELECT movie_id, embedding
FROM movie_embeddings
WHERE movie_id IN (` + placeholders(1, len(ids)) + `)`

	rows, err := repo.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("EmbeddingsByMovieIDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	embeddings := make(map[int64][]float32, len(ids))
	for rows.Next() {
		var movieID int64
		var vector pgvector.Vector
		if err := rows.Scan(&movieID, &vector); err != nil {
			return nil, fmt.Errorf("EmbeddingsByMovieIDs: Scan: %w", err)
		}
		embeddings[movieID] = vector.Slice()
	}
	return embeddings, rows.Err()
}

// NearestToVector runs a cosine-distance search over the embedding index.
// Similarity is reported as 1 - distance.
func (repo *MovieEmbeddingRepo) NearestToVector(ctx context.Context, vec []float32, limit int, exclude []int64) ([]repository.SimilarMovie, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultSearchTimeout)
	defer cancel()

	query := `
SELECT movie_id, 1 - (embedding <=> $1) AS similarity
FROM movie_embeddings`
	args := []any{pgvector.NewVector(vec)}
	if len(exclude) > 0 {
		query += `
WHERE movie_id NOT IN (` + placeholders(2, len(exclude)) + `)`
		args = append(args, int64Args(exclude)...)
	}
	query += fmt.Sprintf(`
ORDER BY embedding <=> $1
LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("NearestToVector: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]repository.SimilarMovie, 0, limit)
	for rows.Next() {
		var sm repository.SimilarMovie
		if err := rows.Scan(&sm.MovieID, &sm.Similarity); err != nil {
			return nil, fmt.Errorf("NearestToVector: Scan: %w", err)
		}
		results = append(results, sm)
	}
	return results, rows.Err()
}
