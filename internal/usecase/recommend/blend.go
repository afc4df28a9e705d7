package recommend

import (
	"context"
	"errors"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"cinerec/internal/domain/entity"
	"cinerec/internal/engine/content"
	"cinerec/internal/engine/latent"
	"cinerec/internal/engine/neighborhood"
	"cinerec/internal/observability/metrics"
)

// strategyWeight pairs a strategy tag with its share of the requested list.
// Slice order is the dedupe priority.
type strategyWeight struct {
	tag    string
	weight float64
}

// blendWeights returns the active strategies for the regular tier, highest
// priority first. Weights sum to 1 for every combination.
func (s *Service) blendWeights(opts Options) []strategyWeight {
	useEmb := opts.UseEmbeddings && s.Embedding != nil
	useGraph := opts.UseGraph && s.Graph != nil

	switch {
	case useEmb && useGraph:
		return []strategyWeight{
			{entity.StrategyLatent, 0.30},
			{entity.StrategyEmbedding, 0.30},
			{entity.StrategyGraph, 0.25},
			{entity.StrategyNeighborhood, 0.15},
		}
	case useEmb:
		return []strategyWeight{
			{entity.StrategyLatent, 0.40},
			{entity.StrategyEmbedding, 0.30},
			{entity.StrategyNeighborhood, 0.20},
			{entity.StrategyContent, 0.10},
		}
	case useGraph:
		return []strategyWeight{
			{entity.StrategyLatent, 0.45},
			{entity.StrategyGraph, 0.25},
			{entity.StrategyNeighborhood, 0.20},
			{entity.StrategyContent, 0.10},
		}
	default:
		return []strategyWeight{
			{entity.StrategyLatent, 0.60},
			{entity.StrategyNeighborhood, 0.25},
			{entity.StrategyContent, 0.15},
		}
	}
}

// blend assembles the regular tier list: the active strategies are queried
// concurrently for ceil(weight*limit) candidates each, then merged in
// priority order with disliked-genre items dropped, duplicates resolved to
// the first occurrence and the result truncated to limit. A strategy that
// errors or returns nothing is skipped.
func (s *Service) blend(ctx context.Context, model *latent.Model, userID int64, history []*entity.Interaction, seen map[int64]bool, excluded map[string]bool, limit int, opts Options) []entity.Recommendation {
	weights := s.blendWeights(opts)

	results := make([][]entity.ScoredMovie, len(weights))
	g, gctx := errgroup.WithContext(ctx)
	for i, sw := range weights {
		i, sw := i, sw
		g.Go(func() error {
			need := int(math.Ceil(sw.weight * float64(limit)))
			results[i] = s.strategyItems(gctx, model, userID, history, seen, sw.tag, need)
			return nil
		})
	}
	_ = g.Wait()

	var recs []entity.Recommendation
	picked := make(map[int64]bool, limit)
	for i, sw := range weights {
		items := s.dropExcludedGenres(ctx, results[i], excluded)
		for _, it := range items {
			if picked[it.MovieID] || seen[it.MovieID] {
				continue
			}
			picked[it.MovieID] = true
			recs = append(recs, entity.Recommendation{MovieID: it.MovieID, Score: it.Score, Strategy: sw.tag})
		}
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// strategyItems dispatches one strategy's candidate request.
func (s *Service) strategyItems(ctx context.Context, model *latent.Model, userID int64, history []*entity.Interaction, seen map[int64]bool, tag string, need int) []entity.ScoredMovie {
	switch tag {
	case entity.StrategyLatent:
		return model.Rank(userID, seen, need)

	case entity.StrategyNeighborhood:
		corpus, err := s.Interactions.ListAll(ctx)
		if err != nil {
			s.logger().WarnContext(ctx, "list interaction corpus failed", "error", err)
			return nil
		}
		return neighborhood.Rank(corpus, userID, seen, need)

	case entity.StrategyContent:
		profile := content.BuildProfile(history, s.moviesFor(ctx, history))
		if profile.Empty() {
			return nil
		}
		candidates, err := s.Movies.ListCandidates(ctx, s.Config.CandidateMinVotes)
		if err != nil {
			s.logger().WarnContext(ctx, "list candidates failed", "error", err)
			return nil
		}
		return profile.Rank(candidates, seen, need)

	case entity.StrategyEmbedding:
		return s.providerItems(ctx, s.Embedding, userID, seen, need)

	case entity.StrategyGraph:
		return s.providerItems(ctx, s.Graph, userID, seen, need)
	}
	return nil
}

// providerItems calls one external similarity provider under the configured
// deadline. A failed or timed-out call skips the strategy.
func (s *Service) providerItems(ctx context.Context, p SimilarityProvider, userID int64, seen map[int64]bool, need int) []entity.ScoredMovie {
	if p == nil {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, s.providerTimeout())
	defer cancel()

	start := time.Now()
	items, err := p.Similar(cctx, userID, need, idList(seen))
	if errors.Is(err, ErrProviderUnavailable) {
		metrics.RecordProviderSkipped(p.Name())
		s.logger().WarnContext(ctx, "similarity provider skipped", "provider", p.Name(), "error", err)
		return nil
	}
	metrics.RecordProviderRequest(p.Name(), err == nil, time.Since(start))
	if err != nil {
		s.logger().WarnContext(ctx, "similarity provider failed", "provider", p.Name(), "error", err)
		return nil
	}
	return items
}
