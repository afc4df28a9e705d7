package metrics

import "time"

// RecordRecommendationsServed records one served recommendation list: the
// assembly latency for the tier plus a per-strategy item breakdown.
func RecordRecommendationsServed(tier string, perStrategy map[string]int, duration time.Duration) {
	RecommendationDuration.WithLabelValues(tier).Observe(duration.Seconds())
	for strategy, count := range perStrategy {
		if count > 0 {
			RecommendationsServedTotal.WithLabelValues(tier, strategy).Add(float64(count))
		}
	}
}

// RecordModelRebuild records the result of a latent model rebuild attempt.
// Status is "success" or "failure". Explained variance is only meaningful on
// success and is skipped otherwise.
func RecordModelRebuild(trigger string, success bool, duration time.Duration, explainedVariance float64) {
	status := "success"
	if !success {
		status = "failure"
	}
	ModelRebuildsTotal.WithLabelValues(trigger, status).Inc()
	ModelRebuildDuration.Observe(duration.Seconds())
	if success {
		ModelExplainedVariance.Set(explainedVariance)
	}
}

// RecordProviderRequest records the outcome of one similarity provider call.
func RecordProviderRequest(provider string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	ProviderRequestsTotal.WithLabelValues(provider, result).Inc()
	ProviderRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordProviderSkipped records a provider call skipped by an open circuit.
func RecordProviderSkipped(provider string) {
	ProviderRequestsTotal.WithLabelValues(provider, "skipped").Inc()
}

// RecordRecommendationEvent records one tracked exposure or outcome by kind.
func RecordRecommendationEvent(outcome string) {
	RecommendationEventsTotal.WithLabelValues(outcome).Inc()
}

// UpdateInteractionsSinceRebuild updates the pending-interaction gauge used
// to watch rebuild trigger pressure.
func UpdateInteractionsSinceRebuild(count int64) {
	InteractionsSinceRebuild.Set(float64(count))
}
