// Package pathutil provides URL path helpers for HTTP handlers and metrics.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Pre-compiled at initialization for optimal performance (<1μs per operation).
var pathPatterns = []*PathPattern{
	// Movie routes with IDs
	{Pattern: regexp.MustCompile(`^/movies/\d+$`), Template: "/movies/:id"},
	{Pattern: regexp.MustCompile(`^/movies/\d+/similar$`), Template: "/movies/:id/similar"},

	// User routes with IDs
	{Pattern: regexp.MustCompile(`^/users/\d+$`), Template: "/users/:id"},
	{Pattern: regexp.MustCompile(`^/users/\d+/recommendations$`), Template: "/users/:id/recommendations"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// It converts paths with IDs (e.g., /movies/123) to template format (e.g., /movies/:id).
// Static paths such as /recommendations and /analytics/performance remain unchanged.
//
// Examples:
//
//	NormalizePath("/movies/123")              // "/movies/:id"
//	NormalizePath("/users/42/recommendations") // "/users/:id/recommendations"
//	NormalizePath("/recommendations")          // "/recommendations" (unchanged)
//	NormalizePath("/healthz")                  // "/healthz" (unchanged)
//
// Query parameters and trailing slashes are handled:
//
//	NormalizePath("/movies/123?lang=en")      // "/movies/:id"
//	NormalizePath("/movies/123/")             // "/movies/:id"
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	// Try to match against known patterns
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	// No match found, return original path. Static paths like /healthz,
	// /metrics and the analytics endpoints pass through unchanged.
	return path
}
