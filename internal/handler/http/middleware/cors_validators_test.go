package middleware

import (
	"fmt"
	"testing"
)

func TestWhitelistValidator_IsAllowed(t *testing.T) {
	validator := NewWhitelistValidator([]string{
		"http://localhost:3000",
		"http://localhost:3001",
		"https://watch.example.com",
		"https://api.example.com",
	})

	tests := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"exact match localhost", "http://localhost:3000", true},
		{"exact match https", "https://watch.example.com", true},
		{"second localhost port", "http://localhost:3001", true},
		{"unknown origin", "http://malicious.com", false},
		{"unlisted subdomain", "https://www.example.com", false},
		{"different port", "http://localhost:3002", false},
		{"missing port", "http://localhost", false},
		{"scheme mismatch", "http://watch.example.com", false},
		{"uppercase scheme", "HTTP://localhost:3000", true},
		{"uppercase host", "http://LOCALHOST:3000", true},
		{"mixed case", "HtTp://LoCaLhOsT:3000", true},
		{"trailing slash", "http://localhost:3000/", true},
		{"empty origin", "", false},
		{"whitespace origin", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validator.IsAllowed(tt.origin); got != tt.expected {
				t.Errorf("IsAllowed(%q) = %v, expected %v", tt.origin, got, tt.expected)
			}
		})
	}
}

func TestWhitelistValidator_EmptyWhitelistRejectsEverything(t *testing.T) {
	validator := NewWhitelistValidator([]string{})

	for _, origin := range []string{
		"http://localhost:3000",
		"https://watch.example.com",
		"http://any-origin.com",
	} {
		if validator.IsAllowed(origin) {
			t.Errorf("IsAllowed(%q) = true, expected false for empty whitelist", origin)
		}
	}
}

func TestWhitelistValidator_IPv6Origins(t *testing.T) {
	validator := NewWhitelistValidator([]string{
		"http://[::1]:8080",
		"https://[2001:db8::1]:443",
	})

	tests := []struct {
		origin   string
		expected bool
	}{
		{"http://[::1]:8080", true},
		{"https://[2001:db8::1]:443", true},
		{"http://[::1]:9000", false},
		{"http://[2001:db8::2]:443", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			if got := validator.IsAllowed(tt.origin); got != tt.expected {
				t.Errorf("IsAllowed(%q) = %v, expected %v", tt.origin, got, tt.expected)
			}
		})
	}
}

func TestWhitelistValidator_NormalizesOnConstruction(t *testing.T) {
	validator := NewWhitelistValidator([]string{
		"HTTP://LOCALHOST:3000/",
		"https://Watch.Example.COM",
		"  http://test.com  ",
		"",
		"   ",
	})

	got := validator.GetAllowedOrigins()
	expected := []string{
		"http://localhost:3000",
		"https://watch.example.com",
		"http://test.com",
	}

	if len(got) != len(expected) {
		t.Fatalf("expected %d origins after normalization, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("origin %d: expected %q, got %q", i, expected[i], got[i])
		}
	}
}

func TestWhitelistValidator_GetAllowedOrigins_DefensiveCopy(t *testing.T) {
	validator := NewWhitelistValidator([]string{
		"http://localhost:3000",
		"https://watch.example.com",
	})

	first := validator.GetAllowedOrigins()
	first[0] = "http://modified.com"

	second := validator.GetAllowedOrigins()
	if second[0] != "http://localhost:3000" {
		t.Errorf("mutation of returned slice leaked into internal state: got %q", second[0])
	}
}

func TestWhitelistValidator_LargeWhitelist(t *testing.T) {
	origins := make([]string, 1000)
	for i := range origins {
		origins[i] = fmt.Sprintf("https://tenant-%d.example.com", i)
	}
	validator := NewWhitelistValidator(origins)

	if validator.IsAllowed("https://notinlist.com") {
		t.Error("expected false for origin not in whitelist")
	}
	if !validator.IsAllowed(origins[0]) {
		t.Error("expected true for first origin in whitelist")
	}
	if !validator.IsAllowed(origins[500]) {
		t.Error("expected true for middle origin in whitelist")
	}
}
