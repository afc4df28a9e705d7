package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"cinerec/internal/domain/entity"
	"cinerec/internal/repository"
)

type MovieRepo struct {
	db *sql.DB
}

func NewMovieRepo(db *sql.DB) repository.MovieRepository {
	return &MovieRepo{db: db}
}

const movieColumns = `id, title, genres, vote_count, vote_average, popularity`

func (repo *MovieRepo) Get(ctx context.Context, id int64) (*entity.Movie, error) {
	const query = `
SELECT ` + movieColumns + `
FROM movies
WHERE id = $1`
	movie, err := scanMovie(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return movie, nil
}

func (repo *MovieRepo) GetBatch(ctx context.Context, ids []int64) (map[int64]*entity.Movie, error) {
	if len(ids) == 0 {
		return map[int64]*entity.Movie{}, nil
	}
	query := `
SELECT ` + movieColumns + `
FROM movies
WHERE id IN (` + placeholders(1, len(ids)) + `)`

	rows, err := repo.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("GetBatch: %w", err)
	}
	defer func() { _ = rows.Close() }()

	movies := make(map[int64]*entity.Movie, len(ids))
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("GetBatch: Scan: %w", err)
		}
		movies[movie.ID] = movie
	}
	return movies, rows.Err()
}

func (repo *MovieRepo) ListCandidates(ctx context.Context, minVoteCount int64) ([]*entity.Movie, error) {
	const query = `
SELECT ` + movieColumns + `
FROM movies
WHERE vote_count >= $1
ORDER BY id`
	rows, err := repo.db.QueryContext(ctx, query, minVoteCount)
	if err != nil {
		return nil, fmt.Errorf("ListCandidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanMovies(rows, "ListCandidates")
}

func (repo *MovieRepo) ListPopular(ctx context.Context, minVoteCount int64, limit int, exclude []int64) ([]*entity.Movie, error) {
	query := `
SELECT ` + movieColumns + `
FROM movies
WHERE vote_count >= $1`
	args := []any{minVoteCount}
	if len(exclude) > 0 {
		query += ` AND id NOT IN (` + placeholders(2, len(exclude)) + `)`
		args = append(args, int64Args(exclude)...)
	}
	query += fmt.Sprintf(`
ORDER BY vote_average DESC, id
LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListPopular: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanMovies(rows, "ListPopular")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*entity.Movie, error) {
	var movie entity.Movie
	var rawGenres []byte
	if err := row.Scan(&movie.ID, &movie.Title, &rawGenres,
		&movie.VoteCount, &movie.VoteAverage, &movie.Popularity); err != nil {
		return nil, err
	}
	movie.Genres = parseGenres(rawGenres)
	return &movie, nil
}

func scanMovies(rows *sql.Rows, op string) ([]*entity.Movie, error) {
	movies := make([]*entity.Movie, 0, 100)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		movies = append(movies, movie)
	}
	return movies, rows.Err()
}

// parseGenres normalizes the genres column into a string list. Catalog
// ingestion has stored the field three ways over time: a JSON string array,
// a JSON object array with name fields, and a plain comma-separated string.
func parseGenres(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		return names
	}

	var objects []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &objects); err == nil {
		names = make([]string, 0, len(objects))
		for _, o := range objects {
			if o.Name != "" {
				names = append(names, o.Name)
			}
		}
		return names
	}

	text := string(raw)
	if err := json.Unmarshal(raw, &text); err == nil && text == "" {
		return nil
	}
	parts := strings.Split(strings.Trim(text, `"`), ",")
	names = make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
