// Package latent builds and serves the rank-k latent factor model over the
// full interaction matrix. Models are immutable snapshots: they are rebuilt
// wholesale and swapped atomically, never mutated in place.
package latent

import (
	"sort"
	"time"

	"cinerec/internal/domain/entity"
)

// Model is one immutable latent factor snapshot. Prediction for a
// (user, item) pair is the dot product of the two factor vectors plus the
// bias terms learned alongside them.
type Model struct {
	K                 int
	Version           int64
	BuiltAt           time.Time
	ExplainedVariance float64

	globalMean  float64
	userBias    map[int64]float64
	itemBias    map[int64]float64
	userFactors map[int64][]float64
	itemFactors map[int64][]float64
}

// HasUser reports whether the user was present in the training matrix.
func (m *Model) HasUser(userID int64) bool {
	_, ok := m.userFactors[userID]
	return ok
}

// Users returns the number of users in the model.
func (m *Model) Users() int { return len(m.userFactors) }

// Items returns the number of items in the model.
func (m *Model) Items() int { return len(m.itemFactors) }

// Predict returns the predicted affinity of the user for the item. The
// second return is false when either side is unknown to the model.
func (m *Model) Predict(userID, itemID int64) (float64, bool) {
	pu, ok := m.userFactors[userID]
	if !ok {
		return 0, false
	}
	qi, ok := m.itemFactors[itemID]
	if !ok {
		return 0, false
	}
	score := m.globalMean + m.userBias[userID] + m.itemBias[itemID]
	for f := 0; f < m.K; f++ {
		score += pu[f] * qi[f]
	}
	return score, true
}

// Rank scores every item known to the model for the user, drops excluded
// items, and returns the rest sorted by score descending. Ties break by
// ascending movie ID so that identical inputs always produce identical
// orderings. A non-positive limit returns all candidates.
func (m *Model) Rank(userID int64, exclude map[int64]bool, limit int) []entity.ScoredMovie {
	if _, ok := m.userFactors[userID]; !ok {
		return nil
	}
	ranked := make([]entity.ScoredMovie, 0, len(m.itemFactors))
	for itemID := range m.itemFactors {
		if exclude[itemID] {
			continue
		}
		score, _ := m.Predict(userID, itemID)
		ranked = append(ranked, entity.ScoredMovie{MovieID: itemID, Score: score})
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
