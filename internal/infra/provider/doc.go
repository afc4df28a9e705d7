// Package provider implements the pluggable similarity providers consumed by
// the recommendation orchestrator: a pgvector-backed embedding search and an
// HTTP client for the external graph similarity service. Both are wrapped in
// circuit breakers so a degraded backend drops the strategy instead of
// slowing the whole recommendation path.
package provider
