// Package content implements the genre-profile scoring model used for cold
// start and diversity fill: a weighted genre taste vector derived from the
// user's signaled items, scored against catalog candidates.
package content

import (
	"sort"

	"cinerec/internal/domain/entity"
)

// topGenreCount limits scoring to the user's strongest genres.
const topGenreCount = 3

// Profile is a user's genre taste vector. Weights above zero express liking;
// genres a user signaled negatively land in Excluded and disqualify any
// candidate whose genres are all excluded.
type Profile struct {
	Weights  map[string]float64
	Excluded map[string]bool
}

// BuildProfile derives a profile from the user's interactions. Genre weights
// follow the signal: strong ratings 1.0, favorites 0.8, watchlist 0.5;
// negative signals subtract weight and add the genre to the exclusion set.
func BuildProfile(interactions []*entity.Interaction, movies map[int64]*entity.Movie) Profile {
	p := Profile{Weights: map[string]float64{}, Excluded: map[string]bool{}}
	for _, in := range interactions {
		movie, ok := movies[in.MovieID]
		if !ok {
			continue
		}
		w := in.ProfileWeight()
		if w == 0 {
			continue
		}
		for _, g := range movie.Genres {
			p.Weights[g] += w
			if in.IsNegative() {
				p.Excluded[g] = true
			}
		}
	}
	// A genre the user also likes elsewhere is not excluded outright.
	for g, w := range p.Weights {
		if w > 0 {
			delete(p.Excluded, g)
		}
	}
	return p
}

// FromGenres builds a profile from declared onboarding preferences.
func FromGenres(liked, disliked []string) Profile {
	p := Profile{Weights: map[string]float64{}, Excluded: map[string]bool{}}
	for _, g := range liked {
		p.Weights[g] = 1.0
	}
	for _, g := range disliked {
		p.Excluded[g] = true
		delete(p.Weights, g)
	}
	return p
}

// Empty reports whether the profile carries no positive genre signal.
func (p Profile) Empty() bool {
	for _, w := range p.Weights {
		if w > 0 {
			return false
		}
	}
	return true
}

// TopGenres returns the user's strongest genres, highest weight first, ties
// by name for determinism.
func (p Profile) TopGenres() []string {
	type gw struct {
		genre  string
		weight float64
	}
	all := make([]gw, 0, len(p.Weights))
	for g, w := range p.Weights {
		if w > 0 {
			all = append(all, gw{g, w})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].weight != all[j].weight {
			return all[i].weight > all[j].weight
		}
		return all[i].genre < all[j].genre
	})
	if len(all) > topGenreCount {
		all = all[:topGenreCount]
	}
	genres := make([]string, len(all))
	for i, g := range all {
		genres[i] = g.genre
	}
	return genres
}

// Score rates one candidate as 2*overlap + 0.5*voteAverage, where overlap
// counts the candidate's genres among the profile's top genres. The score is
// a relative ranking key, deliberately unbounded. ok is false when the
// candidate has no overlap or only excluded genres.
func (p Profile) Score(m *entity.Movie) (float64, bool) {
	if m.OnlyDislikedGenres(p.Excluded) {
		return 0, false
	}
	top := p.TopGenres()
	overlap := 0
	for _, g := range m.Genres {
		for _, t := range top {
			if g == t {
				overlap++
				break
			}
		}
	}
	if overlap == 0 {
		return 0, false
	}
	return 2*float64(overlap) + 0.5*m.VoteAverage, true
}

// Rank scores the candidate pool against the profile and returns matches
// sorted by score descending, ties ascending by movie ID.
func (p Profile) Rank(candidates []*entity.Movie, exclude map[int64]bool, limit int) []entity.ScoredMovie {
	ranked := make([]entity.ScoredMovie, 0, len(candidates))
	for _, m := range candidates {
		if exclude[m.ID] {
			continue
		}
		if score, ok := p.Score(m); ok {
			ranked = append(ranked, entity.ScoredMovie{MovieID: m.ID, Score: score})
		}
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
