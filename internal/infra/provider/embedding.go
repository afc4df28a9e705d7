package provider

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sony/gobreaker"

	"cinerec/internal/domain/entity"
	"cinerec/internal/repository"
	"cinerec/internal/resilience/circuitbreaker"
	"cinerec/internal/usecase/recommend"
)

// defaultSeedLimit caps how much history feeds the taste vector. Recency
// decay leaves older interactions with almost no weight past this window.
const defaultSeedLimit = 30

// EmbeddingProvider scores candidates by cosine similarity between stored
// movie embeddings and a taste vector built from the user's recent positive
// history.
type EmbeddingProvider struct {
	interactions repository.InteractionRepository
	embeddings   repository.MovieEmbeddingRepository
	breaker      *circuitbreaker.CircuitBreaker
	seedLimit    int
}

// NewEmbeddingProvider creates an embedding provider over the given stores.
func NewEmbeddingProvider(interactions repository.InteractionRepository, embeddings repository.MovieEmbeddingRepository) *EmbeddingProvider {
	return &EmbeddingProvider{
		interactions: interactions,
		embeddings:   embeddings,
		breaker:      circuitbreaker.New(circuitbreaker.EmbeddingSearchConfig()),
		seedLimit:    defaultSeedLimit,
	}
}

// Name returns the strategy tag this provider serves.
func (p *EmbeddingProvider) Name() string { return entity.StrategyEmbedding }

// Similar builds the user's taste vector and runs a nearest-neighbor search
// against the embedding store. Users without positive history, or whose seed
// movies have no embeddings, get an empty result rather than an error.
func (p *EmbeddingProvider) Similar(ctx context.Context, userID int64, limit int, exclude []int64) ([]entity.ScoredMovie, error) {
	profile, err := p.tasteVector(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.embeddings.NearestToVector(ctx, profile, limit, exclude)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return nil, fmt.Errorf("embedding search rejected: %w", recommend.ErrProviderUnavailable)
		}
		return nil, fmt.Errorf("embedding search: %w", err)
	}

	neighbors := result.([]repository.SimilarMovie)
	items := make([]entity.ScoredMovie, 0, len(neighbors))
	for _, n := range neighbors {
		items = append(items, entity.ScoredMovie{MovieID: n.MovieID, Score: n.Similarity})
	}
	return items, nil
}

// tasteVector returns the normalized weighted sum of the embeddings of the
// user's recent positive seeds. Each seed weighs its signal strength decayed
// by recency rank: the i-th most recent interaction scales by 1/(1+i/10).
// A repeated seed movie keeps its strongest weight.
func (p *EmbeddingProvider) tasteVector(ctx context.Context, userID int64) ([]float32, error) {
	recent, err := p.interactions.RecentByUser(ctx, userID, p.seedLimit)
	if err != nil {
		return nil, fmt.Errorf("load seed history: %w", err)
	}

	weights := make(map[int64]float64, len(recent))
	ids := make([]int64, 0, len(recent))
	for i, it := range recent {
		w := it.SeedWeight()
		if w == 0 {
			continue
		}
		w /= 1 + float64(i)/10
		prev, ok := weights[it.MovieID]
		if !ok {
			ids = append(ids, it.MovieID)
		}
		if w > prev {
			weights[it.MovieID] = w
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	vecs, err := p.embeddings.EmbeddingsByMovieIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load seed embeddings: %w", err)
	}

	var sum []float64
	for _, id := range ids {
		vec, ok := vecs[id]
		if !ok {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(vec))
		}
		if len(vec) != len(sum) {
			continue
		}
		w := weights[id]
		for j, v := range vec {
			sum[j] += float64(v) * w
		}
	}
	if sum == nil {
		return nil, nil
	}

	var norm float64
	for _, v := range sum {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, nil
	}

	out := make([]float32, len(sum))
	for j, v := range sum {
		out[j] = float32(v / norm)
	}
	return out, nil
}
