package postgres_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"cinerec/internal/infra/adapter/persistence/postgres"
)

func movieRow(id int64, title string, genres []byte) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "genres", "vote_count", "vote_average", "popularity"}).
		AddRow(id, title, genres, int64(900), 7.8, 45.2)
}

func TestMovieRepo_GetNormalizesGenres(t *testing.T) {
	// The catalog has stored genres three ways over time; all must come out
	// as a plain string list.
	tests := []struct {
		name string
		raw  []byte
		want []string
	}{
		{"json string array", []byte(`["Action","Sci-Fi"]`), []string{"Action", "Sci-Fi"}},
		{"json object array", []byte(`[{"id":28,"name":"Action"},{"id":878,"name":"Sci-Fi"}]`), []string{"Action", "Sci-Fi"}},
		{"comma string", []byte(`"Action, Sci-Fi"`), []string{"Action", "Sci-Fi"}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, _ := sqlmock.New()
			defer func() { _ = db.Close() }()

			mock.ExpectQuery(`FROM movies`).
				WithArgs(int64(1)).
				WillReturnRows(movieRow(1, "Arrival", tt.raw))

			repo := postgres.NewMovieRepo(db)
			got, err := repo.Get(context.Background(), 1)
			if err != nil {
				t.Fatalf("Get err=%v", err)
			}
			if diff := cmp.Diff(tt.want, got.Genres); diff != "" {
				t.Fatalf("genres mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMovieRepo_GetMissing(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM movies`).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "genres", "vote_count", "vote_average", "popularity"}))

	repo := postgres.NewMovieRepo(db)
	got, err := repo.Get(context.Background(), 999)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if got != nil {
		t.Fatalf("missing movie must be nil, got %+v", got)
	}
}

func TestMovieRepo_GetBatch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"id", "title", "genres", "vote_count", "vote_average", "popularity"}).
		AddRow(int64(1), "Arrival", []byte(`["Sci-Fi"]`), int64(900), 7.8, 45.2).
		AddRow(int64(2), "Heat", []byte(`["Crime"]`), int64(800), 8.0, 40.0)

	mock.ExpectQuery(`WHERE id IN \(\$1, \$2\)`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(rows)

	repo := postgres.NewMovieRepo(db)
	got, err := repo.GetBatch(context.Background(), []int64{1, 2})
	if err != nil || len(got) != 2 {
		t.Fatalf("GetBatch err=%v len=%d", err, len(got))
	}
	if got[2].Title != "Heat" {
		t.Fatalf("GetBatch keyed wrong: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMovieRepo_GetBatchEmpty(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := postgres.NewMovieRepo(db)
	got, err := repo.GetBatch(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty batch must skip the query: err=%v len=%d", err, len(got))
	}
}

func TestMovieRepo_ListPopularExcludes(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`AND id NOT IN \(\$2, \$3\)`).
		WithArgs(int64(100), int64(7), int64(9), 5).
		WillReturnRows(movieRow(1, "Arrival", []byte(`["Sci-Fi"]`)))

	repo := postgres.NewMovieRepo(db)
	got, err := repo.ListPopular(context.Background(), 100, 5, []int64{7, 9})
	if err != nil || len(got) != 1 {
		t.Fatalf("ListPopular err=%v len=%d", err, len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
