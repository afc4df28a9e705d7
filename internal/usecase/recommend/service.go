// Package recommend implements the strategy orchestrator: it selects a
// serving tier from the user's data sufficiency, blends the active scoring
// strategies, applies the context reranker and falls back to global
// popularity when every strategy comes back empty.
package recommend

import (
	"context"
	"log/slog"
	"time"

	"cinerec/internal/domain/entity"
	"cinerec/internal/engine/content"
	"cinerec/internal/engine/latent"
	"cinerec/internal/engine/neighborhood"
	"cinerec/internal/engine/rerank"
	"cinerec/internal/observability/metrics"
	"cinerec/internal/repository"
)

// Serving tiers selected from the user's interaction count and model state.
const (
	TierColdStart = "cold_start"
	TierLight     = "light"
	TierRegular   = "regular"
)

// DefaultLimit is the list size used when the caller does not specify one.
const DefaultLimit = 10

// Config carries the orchestrator tuning knobs.
type Config struct {
	// ColdStartThreshold is the interaction count below which the cold
	// start tier serves the request.
	ColdStartThreshold int
	// CandidateMinVotes is the vote-count floor for the content scoring
	// candidate pool.
	CandidateMinVotes int64
	// PopularMinVotes is the vote-count floor for the popularity fallback.
	PopularMinVotes int64
	// ProviderTimeout bounds each external similarity provider call.
	ProviderTimeout time.Duration
}

// DefaultConfig returns the standard orchestrator tuning.
func DefaultConfig() Config {
	return Config{
		ColdStartThreshold: 3,
		CandidateMinVotes:  50,
		PopularMinVotes:    100,
		ProviderTimeout:    400 * time.Millisecond,
	}
}

// Options toggle the optional request features.
type Options struct {
	UseContext    bool
	UseEmbeddings bool
	UseGraph      bool
}

// DefaultOptions enables the context reranker and nothing else.
func DefaultOptions() Options {
	return Options{UseContext: true}
}

// SimilarityProvider is an external pre-computed similarity source consumed
// as one more candidate strategy. Implementations must honor the context
// deadline.
type SimilarityProvider interface {
	Name() string
	Similar(ctx context.Context, userID int64, limit int, exclude []int64) ([]entity.ScoredMovie, error)
}

// ExposureRecorder persists exposure events for served recommendations.
type ExposureRecorder interface {
	RecordExposures(ctx context.Context, userID int64, recs []entity.Recommendation)
}

// Service orchestrates the scoring strategies behind a recommendation
// request. It is stateless per request; the only shared state is the
// read-only model snapshot behind Models.
type Service struct {
	Interactions repository.InteractionRepository
	Movies       repository.MovieRepository
	Preferences  repository.PreferenceRepository
	Models       *latent.Cache

	// Embedding and Graph are optional; a nil provider disables its strategy
	// regardless of the request options.
	Embedding SimilarityProvider
	Graph     SimilarityProvider

	// Exposures is optional; when set, served lists are recorded off the
	// request path.
	Exposures ExposureRecorder

	Logger *slog.Logger
	Config Config

	// Now is overridable for deterministic reranker tests.
	Now func() time.Time
}

// Recommend returns up to limit recommendations for the user. Strategy
// failures degrade the list instead of failing the request: the only errors
// returned are input validation errors.
func (s *Service) Recommend(ctx context.Context, userID int64, limit int, opts Options) ([]entity.Recommendation, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	start := s.now()

	history, err := s.Interactions.ListByUser(ctx, userID)
	if err != nil {
		s.logger().WarnContext(ctx, "list interactions failed", "user_id", userID, "error", err)
		history = nil
	}
	seen := seenSet(history)
	excluded := s.excludedGenres(ctx, userID, history)

	var (
		tier string
		recs []entity.Recommendation
	)
	switch {
	case len(history) < s.threshold():
		tier = TierColdStart
		recs = s.coldStart(ctx, userID, history, seen, excluded, limit)
	default:
		model := s.Models.Load()
		if model != nil && model.HasUser(userID) {
			tier = TierRegular
			recs = s.blend(ctx, model, userID, history, seen, excluded, limit, opts)
		} else {
			tier = TierLight
			recs = s.light(ctx, userID, history, seen, excluded, limit)
		}
	}

	if len(recs) == 0 {
		recs = s.popular(ctx, seen, excluded, limit)
	}
	if opts.UseContext && len(recs) > 1 {
		recs = s.rerankByContext(ctx, userID, recs)
	}

	perStrategy := make(map[string]int, 4)
	for _, r := range recs {
		perStrategy[r.Strategy]++
	}
	metrics.RecordRecommendationsServed(tier, perStrategy, time.Since(start))
	s.logger().InfoContext(ctx, "recommendations served",
		"user_id", userID, "tier", tier, "count", len(recs))

	if s.Exposures != nil && len(recs) > 0 {
		go s.Exposures.RecordExposures(context.WithoutCancel(ctx), userID, recs)
	}
	return recs, nil
}

// coldStart serves users with too little history for collaborative scoring.
// Declared onboarding genres win over an inferred profile; an empty profile
// defers to the popularity fallback in the caller.
func (s *Service) coldStart(ctx context.Context, userID int64, history []*entity.Interaction, seen map[int64]bool, excluded map[string]bool, limit int) []entity.Recommendation {
	profile := s.coldStartProfile(ctx, userID, history)
	if profile.Empty() {
		return nil
	}
	for g := range excluded {
		profile.Excluded[g] = true
	}

	candidates, err := s.Movies.ListCandidates(ctx, s.Config.CandidateMinVotes)
	if err != nil {
		s.logger().WarnContext(ctx, "list candidates failed", "error", err)
		return nil
	}
	return tagged(profile.Rank(candidates, seen, limit), entity.StrategyContent)
}

func (s *Service) coldStartProfile(ctx context.Context, userID int64, history []*entity.Interaction) content.Profile {
	declared, err := s.Preferences.GetDeclared(ctx, userID)
	if err != nil {
		s.logger().WarnContext(ctx, "get declared preferences failed", "user_id", userID, "error", err)
	}
	if declared != nil && len(declared.LikedGenres) > 0 {
		return content.FromGenres(declared.LikedGenres, declared.DislikedGenres)
	}
	if len(history) == 0 {
		return content.Profile{}
	}
	return content.BuildProfile(history, s.moviesFor(ctx, history))
}

// light serves users with some history but no latent coverage: neighborhood
// scoring first, content scoring fills the remainder.
func (s *Service) light(ctx context.Context, userID int64, history []*entity.Interaction, seen map[int64]bool, excluded map[string]bool, limit int) []entity.Recommendation {
	var recs []entity.Recommendation

	corpus, err := s.Interactions.ListAll(ctx)
	if err != nil {
		s.logger().WarnContext(ctx, "list interaction corpus failed", "error", err)
	} else {
		primary := s.dropExcludedGenres(ctx, neighborhood.Rank(corpus, userID, seen, limit), excluded)
		recs = tagged(primary, entity.StrategyNeighborhood)
	}
	if len(recs) >= limit {
		return recs[:limit]
	}

	profile := content.BuildProfile(history, s.moviesFor(ctx, history))
	if profile.Empty() {
		return recs
	}
	for g := range excluded {
		profile.Excluded[g] = true
	}
	candidates, err := s.Movies.ListCandidates(ctx, s.Config.CandidateMinVotes)
	if err != nil {
		s.logger().WarnContext(ctx, "list candidates failed", "error", err)
		return recs
	}
	picked := make(map[int64]bool, len(seen)+len(recs))
	for id := range seen {
		picked[id] = true
	}
	for _, r := range recs {
		picked[r.MovieID] = true
	}
	fill := profile.Rank(candidates, picked, limit-len(recs))
	return append(recs, tagged(fill, entity.StrategyContent)...)
}

// popular is the terminal fallback: well-voted titles by rating. Disliked
// genre exclusion holds here too, so the list may come back short.
func (s *Service) popular(ctx context.Context, seen map[int64]bool, excluded map[string]bool, limit int) []entity.Recommendation {
	movies, err := s.Movies.ListPopular(ctx, s.Config.PopularMinVotes, limit, idList(seen))
	if err != nil {
		s.logger().WarnContext(ctx, "popularity fallback failed", "error", err)
		return nil
	}
	recs := make([]entity.Recommendation, 0, len(movies))
	for _, m := range movies {
		if m.OnlyDislikedGenres(excluded) {
			continue
		}
		recs = append(recs, entity.Recommendation{
			MovieID:  m.ID,
			Score:    m.VoteAverage,
			Strategy: entity.StrategyPopular,
		})
	}
	return recs
}

// rerankByContext applies the temporal and diversity passes over the final
// list. Reranking never adds or removes items; metadata lookup failures
// leave the list untouched.
func (s *Service) rerankByContext(ctx context.Context, userID int64, recs []entity.Recommendation) []entity.Recommendation {
	ids := make([]int64, len(recs))
	byID := make(map[int64]entity.Recommendation, len(recs))
	items := make([]entity.ScoredMovie, len(recs))
	for i, r := range recs {
		ids[i] = r.MovieID
		byID[r.MovieID] = r
		items[i] = entity.ScoredMovie{MovieID: r.MovieID, Score: r.Score}
	}

	movies, err := s.Movies.GetBatch(ctx, ids)
	if err != nil {
		s.logger().WarnContext(ctx, "rerank metadata lookup failed", "error", err)
		return recs
	}
	genres := make(map[int64][]string, len(movies))
	for id, m := range movies {
		genres[id] = m.Genres
	}

	items = rerank.Temporal(items, genres, s.now())
	items = rerank.Diversity(items, genres, s.recentGenres(ctx, userID))

	out := make([]entity.Recommendation, len(items))
	for i, it := range items {
		out[i] = byID[it.MovieID]
	}
	return out
}

// recentGenres returns the genre lists of the user's most recent
// interactions, for the diversity pass saturation ratios.
func (s *Service) recentGenres(ctx context.Context, userID int64) [][]string {
	recent, err := s.Interactions.RecentByUser(ctx, userID, rerank.RecentWindow())
	if err != nil {
		s.logger().WarnContext(ctx, "recent interactions lookup failed", "user_id", userID, "error", err)
		return nil
	}
	movies := s.moviesFor(ctx, recent)
	genres := make([][]string, 0, len(recent))
	for _, in := range recent {
		if m, ok := movies[in.MovieID]; ok {
			genres = append(genres, m.Genres)
		}
	}
	return genres
}

// excludedGenres merges the user's declared dislikes with the disliked-genre
// set derived from negative history signals. Declared dislikes apply even to
// users with no history at all.
func (s *Service) excludedGenres(ctx context.Context, userID int64, history []*entity.Interaction) map[string]bool {
	excluded := map[string]bool{}
	if len(history) > 0 {
		profile := content.BuildProfile(history, s.moviesFor(ctx, history))
		excluded = profile.Excluded
	}
	if declared, err := s.Preferences.GetDeclared(ctx, userID); err == nil && declared != nil {
		for _, g := range declared.DislikedGenres {
			excluded[g] = true
		}
	}
	if len(excluded) == 0 {
		return nil
	}
	return excluded
}

// dropExcludedGenres filters out candidates whose genres are all disliked.
func (s *Service) dropExcludedGenres(ctx context.Context, items []entity.ScoredMovie, excluded map[string]bool) []entity.ScoredMovie {
	if len(items) == 0 || len(excluded) == 0 {
		return items
	}
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.MovieID
	}
	movies, err := s.Movies.GetBatch(ctx, ids)
	if err != nil {
		s.logger().WarnContext(ctx, "genre filter lookup failed", "error", err)
		return items
	}
	kept := items[:0]
	for _, it := range items {
		if m, ok := movies[it.MovieID]; ok && m.OnlyDislikedGenres(excluded) {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}

// moviesFor batch-loads the metadata behind a set of interactions.
func (s *Service) moviesFor(ctx context.Context, interactions []*entity.Interaction) map[int64]*entity.Movie {
	if len(interactions) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(interactions))
	dedup := make(map[int64]bool, len(interactions))
	for _, in := range interactions {
		if !dedup[in.MovieID] {
			dedup[in.MovieID] = true
			ids = append(ids, in.MovieID)
		}
	}
	movies, err := s.Movies.GetBatch(ctx, ids)
	if err != nil {
		s.logger().WarnContext(ctx, "movie batch lookup failed", "error", err)
		return nil
	}
	return movies
}

func (s *Service) threshold() int {
	if s.Config.ColdStartThreshold > 0 {
		return s.Config.ColdStartThreshold
	}
	return DefaultConfig().ColdStartThreshold
}

func (s *Service) providerTimeout() time.Duration {
	if s.Config.ProviderTimeout > 0 {
		return s.Config.ProviderTimeout
	}
	return DefaultConfig().ProviderTimeout
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func seenSet(interactions []*entity.Interaction) map[int64]bool {
	seen := make(map[int64]bool, len(interactions))
	for _, in := range interactions {
		seen[in.MovieID] = true
	}
	return seen
}

func idList(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

func tagged(items []entity.ScoredMovie, strategy string) []entity.Recommendation {
	recs := make([]entity.Recommendation, len(items))
	for i, it := range items {
		recs[i] = entity.Recommendation{MovieID: it.MovieID, Score: it.Score, Strategy: strategy}
	}
	return recs
}
