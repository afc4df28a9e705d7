package pathutil

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"movie detail", "/movies/123", "/movies/:id"},
		{"movie detail other id", "/movies/9999999", "/movies/:id"},
		{"movie similar", "/movies/42/similar", "/movies/:id/similar"},
		{"user detail", "/users/7", "/users/:id"},
		{"user recommendations", "/users/7/recommendations", "/users/:id/recommendations"},
		{"static recommendations", "/recommendations", "/recommendations"},
		{"static explain", "/recommendations/explain", "/recommendations/explain"},
		{"analytics performance", "/analytics/performance", "/analytics/performance"},
		{"analytics track", "/analytics/track/click", "/analytics/track/click"},
		{"healthz", "/healthz", "/healthz"},
		{"metrics", "/metrics", "/metrics"},
		{"root", "/", "/"},
		{"unknown dynamic path", "/unknown/path/123", "/unknown/path/123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePath(tt.path); got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestNormalizePath_QueryParameters(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/movies/123?lang=en", "/movies/:id"},
		{"/recommendations?user_id=1&limit=10", "/recommendations"},
		{"/analytics/performance?algorithm=latent&days=30", "/analytics/performance"},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.path); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestNormalizePath_TrailingSlash(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/movies/123/", "/movies/:id"},
		{"/recommendations/", "/recommendations"},
		{"/", "/"},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.path); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
