package entity

// Strategy tags identifying which scoring sub-model produced a candidate.
const (
	StrategyLatent       = "latent"
	StrategyNeighborhood = "neighborhood"
	StrategyContent      = "content"
	StrategyEmbedding    = "embedding"
	StrategyGraph        = "graph"
	StrategyPopular      = "popular"
)

// ScoredMovie is one candidate produced by a single scoring strategy.
// Scores are ranking keys relative to that strategy, not probabilities.
type ScoredMovie struct {
	MovieID int64
	Score   float64
}

// Recommendation is one entry of a returned recommendation list.
type Recommendation struct {
	MovieID  int64
	Score    float64
	Strategy string
}

// DeclaredPreferences are onboarding preferences a user stated explicitly,
// independent of interaction history.
type DeclaredPreferences struct {
	UserID         int64
	LikedGenres    []string
	DislikedGenres []string
}
