package recommend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinerec/internal/domain/entity"
	"cinerec/internal/engine/latent"
	"cinerec/internal/handler/http/recommend"
	"cinerec/internal/repository"
	recUC "cinerec/internal/usecase/recommend"
)

type stubInteractionRepo struct {
	byUser []*entity.Interaction
	all    []*entity.Interaction
}

func (s *stubInteractionRepo) ListByUser(_ context.Context, _ int64) ([]*entity.Interaction, error) {
	return s.byUser, nil
}
func (s *stubInteractionRepo) ListAll(_ context.Context) ([]*entity.Interaction, error) {
	return s.all, nil
}
func (s *stubInteractionRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(s.all)), nil
}
func (s *stubInteractionRepo) RecentByUser(_ context.Context, _ int64, _ int) ([]*entity.Interaction, error) {
	return nil, nil
}

type stubMovieRepo struct {
	movies  map[int64]*entity.Movie
	popular []*entity.Movie
}

func (s *stubMovieRepo) Get(_ context.Context, id int64) (*entity.Movie, error) {
	return s.movies[id], nil
}
func (s *stubMovieRepo) GetBatch(_ context.Context, ids []int64) (map[int64]*entity.Movie, error) {
	out := make(map[int64]*entity.Movie)
	for _, id := range ids {
		if m, ok := s.movies[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}
func (s *stubMovieRepo) ListCandidates(_ context.Context, _ int64) ([]*entity.Movie, error) {
	return nil, nil
}
func (s *stubMovieRepo) ListPopular(_ context.Context, _ int64, limit int, _ []int64) ([]*entity.Movie, error) {
	if len(s.popular) > limit {
		return s.popular[:limit], nil
	}
	return s.popular, nil
}

type stubPreferenceRepo struct{ declared *entity.DeclaredPreferences }

func (s *stubPreferenceRepo) GetDeclared(_ context.Context, _ int64) (*entity.DeclaredPreferences, error) {
	return s.declared, nil
}

func newService() *recUC.Service {
	return &recUC.Service{
		Interactions: &stubInteractionRepo{},
		Movies: &stubMovieRepo{
			popular: []*entity.Movie{
				{ID: 101, Title: "Heat", VoteCount: 5000, VoteAverage: 7.9},
				{ID: 102, Title: "Ronin", VoteCount: 2000, VoteAverage: 7.1},
			},
		},
		Preferences: &stubPreferenceRepo{},
		Models:      &latent.Cache{},
		Config:      recUC.DefaultConfig(),
	}
}

func TestListHandler_PopularFallback(t *testing.T) {
	h := recommend.ListHandler{Svc: newService()}

	req := httptest.NewRequest(http.MethodGet, "/recommendations?user_id=42&use_context=false", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var out recommend.ListDTO
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.UserID != 42 {
		t.Errorf("got user_id %d, want 42", out.UserID)
	}
	if out.Count != 2 || len(out.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(out.Recommendations))
	}
	if out.Recommendations[0].MovieID != 101 {
		t.Errorf("got first movie %d, want 101", out.Recommendations[0].MovieID)
	}
	for _, item := range out.Recommendations {
		if item.Strategy != entity.StrategyPopular {
			t.Errorf("got strategy %q, want %q", item.Strategy, entity.StrategyPopular)
		}
	}
}

func TestListHandler_RespectsLimit(t *testing.T) {
	h := recommend.ListHandler{Svc: newService()}

	req := httptest.NewRequest(http.MethodGet, "/recommendations?user_id=42&limit=1&use_context=false", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
	}
	var out recommend.ListDTO
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Count != 1 {
		t.Errorf("got count %d, want 1", out.Count)
	}
}

func TestListHandler_BadRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing user_id", ""},
		{"non numeric user_id", "user_id=abc"},
		{"zero user_id", "user_id=0"},
		{"negative limit", "user_id=1&limit=-5"},
		{"non numeric limit", "user_id=1&limit=ten"},
		{"bad boolean", "user_id=1&use_embeddings=maybe"},
	}

	h := recommend.ListHandler{Svc: newService()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/recommendations?"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("got status %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

var _ repository.InteractionRepository = (*stubInteractionRepo)(nil)
var _ repository.MovieRepository = (*stubMovieRepo)(nil)
var _ repository.PreferenceRepository = (*stubPreferenceRepo)(nil)
