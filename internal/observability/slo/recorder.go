package slo

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

// maxWindowSamples caps the latency window so a traffic burst cannot grow
// the recorder without bound. Overflow keeps the most recent samples.
const maxWindowSamples = 4096

// Default is the recorder the HTTP metrics middleware feeds.
var Default = &Recorder{}

// Recorder accumulates request outcomes between flushes. It is safe for
// concurrent use.
type Recorder struct {
	mu        sync.Mutex
	total     int64
	errors    int64
	durations []float64
	next      int
	wrapped   bool
}

// Observe records one finished request. Status codes of 500 and above count
// against availability and the error rate.
func (r *Recorder) Observe(status int, seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	if status >= 500 {
		r.errors++
	}

	if len(r.durations) < maxWindowSamples {
		r.durations = append(r.durations, seconds)
		return
	}
	r.durations[r.next] = seconds
	r.next = (r.next + 1) % maxWindowSamples
	r.wrapped = true
}

// Flush publishes the window's ratios to the SLO gauges and resets the
// window. An empty window publishes full availability and leaves the
// latency gauges at their previous values.
func (r *Recorder) Flush() {
	r.mu.Lock()
	total, errors := r.total, r.errors
	durations := r.durations
	r.total, r.errors = 0, 0
	r.durations = nil
	r.next = 0
	r.wrapped = false
	r.mu.Unlock()

	if total == 0 {
		SLOAvailability.Set(1)
		SLOErrorRate.Set(0)
		return
	}

	SLOAvailability.Set(float64(total-errors) / float64(total))
	SLOErrorRate.Set(float64(errors) / float64(total))

	if len(durations) == 0 {
		return
	}
	sort.Float64s(durations)
	SLOLatencyP95.Set(quantile(durations, 0.95))
	SLOLatencyP99.Set(quantile(durations, 0.99))
}

// Start flushes the recorder on the given interval until ctx is cancelled.
func (r *Recorder) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Flush()
			}
		}
	}()
}

// quantile returns the q-th quantile of a sorted sample using the
// nearest-rank method.
func quantile(sorted []float64, q float64) float64 {
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
