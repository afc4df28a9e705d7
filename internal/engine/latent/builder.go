package latent

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"time"

	"cinerec/internal/domain/entity"
)

// ErrUnavailable signals that no model can be built from the given corpus:
// too few interactions or a degenerate matrix. Callers fall back to the
// similarity strategies; Build never fails any other way.
var ErrUnavailable = errors.New("latent model unavailable")

// Config holds the factorization hyperparameters.
type Config struct {
	// K is the factorization rank.
	K int
	// Epochs is the number of passes over the observed cells.
	Epochs int
	// LearningRate is the SGD step size.
	LearningRate float64
	// Regularization is the L2 penalty applied to factors and biases.
	Regularization float64
	// MinInteractions is the corpus floor below which Build returns
	// ErrUnavailable for numerical stability.
	MinInteractions int
	// Seed fixes the factor initialization so builds are deterministic.
	Seed int64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		K:               20,
		Epochs:          60,
		LearningRate:    0.01,
		Regularization:  0.05,
		MinInteractions: 10,
		Seed:            1,
	}
}

type cell struct {
	user, item int64
	value      float64
}

// Build trains a rank-k factorization over the interaction corpus. Missing
// matrix entries are unknown, never treated as zeros: training runs only
// over observed cells. Build is a pure function of its inputs; snapshot
// caching and versioning belong to the caller.
func Build(interactions []*entity.Interaction, cfg Config) (*Model, error) {
	cells := collectCells(interactions)
	if len(cells) < cfg.MinInteractions {
		return nil, ErrUnavailable
	}

	users := map[int64]bool{}
	items := map[int64]bool{}
	var sum float64
	for _, c := range cells {
		users[c.user] = true
		items[c.item] = true
		sum += c.value
	}
	if len(users) < 2 || len(items) < 2 {
		return nil, ErrUnavailable
	}
	mean := sum / float64(len(cells))

	var tss float64
	for _, c := range cells {
		d := c.value - mean
		tss += d * d
	}
	if tss == 0 {
		return nil, ErrUnavailable
	}

	m := &Model{
		K:           cfg.K,
		BuiltAt:     time.Now().UTC(),
		globalMean:  mean,
		userBias:    make(map[int64]float64, len(users)),
		itemBias:    make(map[int64]float64, len(items)),
		userFactors: make(map[int64][]float64, len(users)),
		itemFactors: make(map[int64][]float64, len(items)),
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	scale := 0.1 / math.Sqrt(float64(cfg.K))
	for _, id := range sortedIDs(users) {
		m.userFactors[id] = randomVector(rng, cfg.K, scale)
	}
	for _, id := range sortedIDs(items) {
		m.itemFactors[id] = randomVector(rng, cfg.K, scale)
	}

	lr, reg := cfg.LearningRate, cfg.Regularization
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		for _, c := range cells {
			pu := m.userFactors[c.user]
			qi := m.itemFactors[c.item]
			pred := mean + m.userBias[c.user] + m.itemBias[c.item]
			for f := 0; f < cfg.K; f++ {
				pred += pu[f] * qi[f]
			}
			e := c.value - pred
			m.userBias[c.user] += lr * (e - reg*m.userBias[c.user])
			m.itemBias[c.item] += lr * (e - reg*m.itemBias[c.item])
			for f := 0; f < cfg.K; f++ {
				puf, qif := pu[f], qi[f]
				pu[f] += lr * (e*qif - reg*puf)
				qi[f] += lr * (e*puf - reg*qif)
			}
		}
	}

	var sse float64
	for _, c := range cells {
		pred, _ := m.Predict(c.user, c.item)
		d := c.value - pred
		sse += d * d
	}
	ev := 1 - sse/tss
	if ev < 0 {
		ev = 0
	}
	if ev > 1 {
		ev = 1
	}
	m.ExplainedVariance = ev

	return m, nil
}

// collectCells deduplicates interactions into one value per (user, item)
// cell. The latest explicit rating wins; implicit signals fill cells that
// have no rating, strongest signal first.
func collectCells(interactions []*entity.Interaction) []cell {
	type slot struct {
		value    float64
		explicit bool
		at       time.Time
	}
	slots := map[[2]int64]slot{}
	for _, in := range interactions {
		key := [2]int64{in.UserID, in.MovieID}
		cur, seen := slots[key]
		switch {
		case in.Signal == entity.SignalRating:
			if !seen || !cur.explicit || in.Timestamp.After(cur.at) {
				slots[key] = slot{value: in.Value, explicit: true, at: in.Timestamp}
			}
		case !seen || (!cur.explicit && in.MatrixValue() > cur.value):
			slots[key] = slot{value: in.MatrixValue(), at: in.Timestamp}
		}
	}

	cells := make([]cell, 0, len(slots))
	for key, s := range slots {
		cells = append(cells, cell{user: key[0], item: key[1], value: s.value})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].user != cells[j].user {
			return cells[i].user < cells[j].user
		}
		return cells[i].item < cells[j].item
	})
	return cells
}

func sortedIDs(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func randomVector(rng *rand.Rand, k int, scale float64) []float64 {
	v := make([]float64, k)
	for f := range v {
		v[f] = rng.NormFloat64() * scale
	}
	return v
}
