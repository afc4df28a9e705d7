package recommend

import (
	"context"
	"fmt"

	"cinerec/internal/domain/entity"
	"cinerec/internal/engine/content"
	"cinerec/internal/engine/neighborhood"
)

// explainNeighborLimit caps the neighbor list in an explanation.
const explainNeighborLimit = 5

// Neighbor is one similar title supporting an explanation.
type Neighbor struct {
	MovieID    int64   `json:"movie_id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// Explanation describes why a movie would be recommended to a user: the
// contributing strategy, its score and the nearest titles from the user's
// own positive history.
type Explanation struct {
	MovieID   int64      `json:"movie_id"`
	Title     string     `json:"title"`
	Score     float64    `json:"score"`
	Strategy  string     `json:"strategy"`
	Neighbors []Neighbor `json:"neighbors"`
}

// Explain scores one movie for one user through the strongest available
// strategy and attaches its nearest co-interaction neighbors.
func (s *Service) Explain(ctx context.Context, userID, movieID int64) (*Explanation, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	if movieID <= 0 {
		return nil, ErrInvalidMovieID
	}

	movie, err := s.Movies.Get(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if movie == nil {
		return nil, ErrMovieNotFound
	}

	history, err := s.Interactions.ListByUser(ctx, userID)
	if err != nil {
		s.logger().WarnContext(ctx, "list interactions failed", "user_id", userID, "error", err)
		history = nil
	}

	exp := &Explanation{MovieID: movie.ID, Title: movie.Title}
	exp.Score, exp.Strategy = s.explainScore(ctx, userID, movie, history)
	exp.Neighbors = s.explainNeighbors(ctx, movieID, history)
	return exp, nil
}

// explainScore walks the strategy chain in serving priority: latent when the
// model covers the user, then the content profile, then raw popularity.
func (s *Service) explainScore(ctx context.Context, userID int64, movie *entity.Movie, history []*entity.Interaction) (float64, string) {
	if model := s.Models.Load(); model != nil {
		if score, ok := model.Predict(userID, movie.ID); ok {
			return score, entity.StrategyLatent
		}
	}
	if len(history) > 0 {
		profile := content.BuildProfile(history, s.moviesFor(ctx, history))
		if score, ok := profile.Score(movie); ok {
			return score, entity.StrategyContent
		}
	}
	return movie.VoteAverage, entity.StrategyPopular
}

// explainNeighbors returns the movie's nearest co-interaction neighbors,
// preferring titles the user signaled positively.
func (s *Service) explainNeighbors(ctx context.Context, movieID int64, history []*entity.Interaction) []Neighbor {
	corpus, err := s.Interactions.ListAll(ctx)
	if err != nil {
		s.logger().WarnContext(ctx, "list interaction corpus failed", "error", err)
		return nil
	}

	// Pull a wide slate so positive-history titles survive the filter.
	slate := neighborhood.Neighbors(corpus, movieID, explainNeighborLimit*5)
	if len(slate) == 0 {
		return nil
	}

	positive := make(map[int64]bool, len(history))
	for _, in := range history {
		if in.IsPositive() {
			positive[in.MovieID] = true
		}
	}

	picked := make([]entity.ScoredMovie, 0, explainNeighborLimit)
	for _, n := range slate {
		if positive[n.MovieID] {
			picked = append(picked, n)
			if len(picked) == explainNeighborLimit {
				break
			}
		}
	}
	if len(picked) == 0 {
		picked = slate
		if len(picked) > explainNeighborLimit {
			picked = picked[:explainNeighborLimit]
		}
	}

	ids := make([]int64, len(picked))
	for i, n := range picked {
		ids[i] = n.MovieID
	}
	movies, err := s.Movies.GetBatch(ctx, ids)
	if err != nil {
		s.logger().WarnContext(ctx, "neighbor metadata lookup failed", "error", err)
		movies = nil
	}

	neighbors := make([]Neighbor, len(picked))
	for i, n := range picked {
		neighbors[i] = Neighbor{MovieID: n.MovieID, Similarity: n.Score}
		if m, ok := movies[n.MovieID]; ok {
			neighbors[i].Title = m.Title
		}
	}
	return neighbors
}
