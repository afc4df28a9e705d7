// Package neighborhood ranks candidates by item-item cosine similarity over
// co-interaction patterns. It is the primary strategy whenever the latent
// model is unavailable or the user is absent from it.
package neighborhood

import (
	"math"
	"sort"

	"cinerec/internal/domain/entity"
)

// Rank scores every co-interacted item against the user's positively
// signaled seed items: candidate score is the sum of cosine(seed, candidate)
// weighted by the seed's own signal strength. Excluded items and the seeds
// themselves never appear in the result. Ordering is deterministic: score
// descending, ties by ascending movie ID.
func Rank(interactions []*entity.Interaction, userID int64, exclude map[int64]bool, limit int) []entity.ScoredMovie {
	vectors := itemVectors(interactions)

	type seed struct {
		movieID int64
		weight  float64
	}
	var seeds []seed
	seedSet := map[int64]bool{}
	for _, in := range interactions {
		if in.UserID != userID {
			continue
		}
		if w := in.SeedWeight(); w > 0 && !seedSet[in.MovieID] {
			seeds = append(seeds, seed{movieID: in.MovieID, weight: w})
			seedSet[in.MovieID] = true
		}
	}
	if len(seeds) == 0 {
		return nil
	}

	scores := map[int64]float64{}
	for _, s := range seeds {
		sv, ok := vectors[s.movieID]
		if !ok {
			continue
		}
		for candidate, cv := range vectors {
			if candidate == s.movieID || seedSet[candidate] || exclude[candidate] {
				continue
			}
			if sim := cosine(sv, cv); sim > 0 {
				scores[candidate] += sim * s.weight
			}
		}
	}

	return sortScores(scores, limit)
}

// Neighbors returns the items most similar to the given movie by
// co-interaction cosine, best first.
func Neighbors(interactions []*entity.Interaction, movieID int64, limit int) []entity.ScoredMovie {
	vectors := itemVectors(interactions)
	target, ok := vectors[movieID]
	if !ok {
		return nil
	}

	scores := map[int64]float64{}
	for candidate, cv := range vectors {
		if candidate == movieID {
			continue
		}
		if sim := cosine(target, cv); sim > 0 {
			scores[candidate] = sim
		}
	}
	return sortScores(scores, limit)
}

// itemVectors builds one sparse user-dimension vector per item from the
// interaction corpus, keeping the strongest signal per (item, user) cell.
func itemVectors(interactions []*entity.Interaction) map[int64]map[int64]float64 {
	vectors := map[int64]map[int64]float64{}
	for _, in := range interactions {
		v := in.MatrixValue()
		if v <= 0 {
			continue
		}
		vec, ok := vectors[in.MovieID]
		if !ok {
			vec = map[int64]float64{}
			vectors[in.MovieID] = vec
		}
		if v > vec[in.UserID] {
			vec[in.UserID] = v
		}
	}
	return vectors
}

func cosine(a, b map[int64]float64) float64 {
	var dot, na, nb float64
	for u, av := range a {
		na += av * av
		if bv, ok := b[u]; ok {
			dot += av * bv
		}
	}
	for _, bv := range b {
		nb += bv * bv
	}
	if dot == 0 || na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func sortScores(scores map[int64]float64, limit int) []entity.ScoredMovie {
	ranked := make([]entity.ScoredMovie, 0, len(scores))
	for id, score := range scores {
		ranked = append(ranked, entity.ScoredMovie{MovieID: id, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].MovieID < ranked[j].MovieID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
