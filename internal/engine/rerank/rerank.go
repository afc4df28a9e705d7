// Package rerank applies the context-aware reordering passes: a time-of-day
// genre boost and a genre-diversity boost against the user's recent history.
// Both passes are pure, length-preserving reorders built on stable sorts.
package rerank

import (
	"sort"
	"time"

	"cinerec/internal/domain/entity"
)

// TimeBucket is a coarse time-of-day segment.
type TimeBucket string

// Time buckets derived from the local hour.
const (
	BucketMorning   TimeBucket = "morning"
	BucketAfternoon TimeBucket = "afternoon"
	BucketEvening   TimeBucket = "evening"
	BucketNight     TimeBucket = "night"
)

// Diversity pass tuning.
const (
	newGenreBoost     = 1.3
	saturationPenalty = 0.5
	minRecentHistory  = 3
	recentWindow      = 10
)

// bucketGenres maps each time bucket to its preferred genres.
var bucketGenres = map[TimeBucket]map[string]bool{
	BucketMorning:   {"Animation": true, "Family": true, "Comedy": true, "Documentary": true},
	BucketAfternoon: {"Action": true, "Adventure": true, "Comedy": true, "Family": true},
	BucketEvening:   {"Drama": true, "Thriller": true, "Crime": true, "Romance": true},
	BucketNight:     {"Horror": true, "Thriller": true, "Mystery": true, "Sci-Fi": true},
}

// weekendGenres extend the preferred set on Saturdays and Sundays.
var weekendGenres = map[string]bool{"Adventure": true, "Fantasy": true, "Family": true, "Action": true}

// BucketFor returns the time bucket and weekend flag for the given moment.
func BucketFor(t time.Time) (TimeBucket, bool) {
	weekend := t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
	switch h := t.Hour(); {
	case h >= 5 && h <= 11:
		return BucketMorning, weekend
	case h >= 12 && h <= 16:
		return BucketAfternoon, weekend
	case h >= 17 && h <= 21:
		return BucketEvening, weekend
	default:
		return BucketNight, weekend
	}
}

// RecentWindow is the number of trailing interactions the diversity pass
// considers.
func RecentWindow() int { return recentWindow }

// Temporal stable-sorts the candidates by how many of their genres match the
// current time bucket's preferred set. Input order is preserved within equal
// boosts, and no item is added or removed.
func Temporal(items []entity.ScoredMovie, genres map[int64][]string, now time.Time) []entity.ScoredMovie {
	bucket, weekend := BucketFor(now)
	preferred := bucketGenres[bucket]

	boost := func(id int64) int {
		n := 0
		for _, g := range genres[id] {
			if preferred[g] || (weekend && weekendGenres[g]) {
				n++
			}
		}
		return n
	}

	out := make([]entity.ScoredMovie, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return boost(out[i].MovieID) > boost(out[j].MovieID)
	})
	return out
}

// Diversity stable-sorts candidates by 1.0 + 1.3*newGenres - 0.5*maxSaturation,
// where saturation ratios come from the genres of the user's recent
// interactions. With fewer than three recent interactions the pass is a
// plain copy.
func Diversity(items []entity.ScoredMovie, genres map[int64][]string, recentGenres [][]string) []entity.ScoredMovie {
	out := make([]entity.ScoredMovie, len(items))
	copy(out, items)
	if len(recentGenres) < minRecentHistory {
		return out
	}

	saturation := map[string]float64{}
	for _, gs := range recentGenres {
		for _, g := range gs {
			saturation[g] += 1.0 / float64(len(recentGenres))
		}
	}

	score := func(id int64) float64 {
		newCount := 0
		maxSat := 0.0
		for _, g := range genres[id] {
			sat, seen := saturation[g]
			if !seen {
				newCount++
				continue
			}
			if sat > maxSat {
				maxSat = sat
			}
		}
		return 1.0 + newGenreBoost*float64(newCount) - saturationPenalty*maxSat
	}

	sort.SliceStable(out, func(i, j int) bool {
		return score(out[i].MovieID) > score(out[j].MovieID)
	})
	return out
}
