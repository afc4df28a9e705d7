package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The loader tests use the worker's real defaults so the fallback warnings
// match what operators see in the logs.

func TestLoadEnvString(t *testing.T) {
	tests := []struct {
		name  string
		set   bool
		value string
		want  string
	}{
		{name: "set", set: true, value: "8081", want: "8081"},
		{name: "unset uses default", want: "8080"},
		{name: "empty uses default", set: true, value: "", want: "8080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("TEST_HTTP_PORT", tt.value)
			}
			assert.Equal(t, tt.want, LoadEnvString("TEST_HTTP_PORT", "8080"))
		})
	}
}

func TestLoadEnvWithFallback(t *testing.T) {
	tests := []struct {
		name     string
		set      bool
		value    string
		want     string
		fallback bool
	}{
		{name: "valid schedule", set: true, value: "0 3 * * *", want: "0 3 * * *"},
		{name: "unset uses default", want: "0 */6 * * *"},
		{name: "empty uses default without warning", set: true, value: "", want: "0 */6 * * *"},
		{name: "invalid schedule falls back", set: true, value: "every six hours", want: "0 */6 * * *", fallback: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("TEST_SWEEP_CRON", tt.value)
			}
			result := LoadEnvWithFallback("TEST_SWEEP_CRON", "0 */6 * * *", ValidateCronSchedule)
			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.fallback, result.FallbackApplied)
			if tt.fallback {
				assert.Len(t, result.Warnings, 1)
			} else {
				assert.Empty(t, result.Warnings)
			}
		})
	}
}

func TestLoadEnvWithFallback_NilValidatorAcceptsAnything(t *testing.T) {
	t.Setenv("TEST_VALUE", "anything at all")

	result := LoadEnvWithFallback("TEST_VALUE", "default", nil)

	assert.Equal(t, "anything at all", result.Value)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_WarningNamesValueAndDefault(t *testing.T) {
	t.Setenv("TEST_TZ", "Mars/Olympus_Mons")

	result := LoadEnvWithFallback("TEST_TZ", "UTC", ValidateTimezone)

	assert.Equal(t, "UTC", result.Value)
	assert.True(t, result.FallbackApplied)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Invalid TEST_TZ='Mars/Olympus_Mons'")
	assert.Contains(t, result.Warnings[0], "falling back to default 'UTC'")
}

func TestLoadEnvDuration(t *testing.T) {
	rebuildBounds := func(d time.Duration) error {
		return ValidateDuration(d, 30*time.Second, time.Hour)
	}
	tests := []struct {
		name     string
		set      bool
		value    string
		want     time.Duration
		fallback bool
		warning  string
	}{
		{name: "valid", set: true, value: "10m", want: 10 * time.Minute},
		{name: "unset uses default", want: 5 * time.Minute},
		{name: "empty uses default", set: true, value: "", want: 5 * time.Minute},
		{name: "unparsable falls back", set: true, value: "ten minutes", want: 5 * time.Minute,
			fallback: true, warning: "Invalid TEST_REBUILD_TIMEOUT='ten minutes'"},
		{name: "below minimum falls back", set: true, value: "5s", want: 5 * time.Minute,
			fallback: true, warning: "below minimum"},
		{name: "above maximum falls back", set: true, value: "2h", want: 5 * time.Minute,
			fallback: true, warning: "exceeds maximum"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("TEST_REBUILD_TIMEOUT", tt.value)
			}
			result := LoadEnvDuration("TEST_REBUILD_TIMEOUT", 5*time.Minute, rebuildBounds)
			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.fallback, result.FallbackApplied)
			if tt.warning != "" {
				require.Len(t, result.Warnings, 1)
				assert.Contains(t, result.Warnings[0], tt.warning)
			}
		})
	}
}

func TestLoadEnvDuration_NoValidator(t *testing.T) {
	t.Setenv("TEST_REBUILD_TIMEOUT", "-10m")

	result := LoadEnvDuration("TEST_REBUILD_TIMEOUT", 5*time.Minute, nil)

	assert.Equal(t, -10*time.Minute, result.Value)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvInt(t *testing.T) {
	portBounds := func(v int) error {
		return ValidateIntRange(v, 1024, 65535)
	}
	tests := []struct {
		name     string
		set      bool
		value    string
		want     int
		fallback bool
		warning  string
	}{
		{name: "valid", set: true, value: "9200", want: 9200},
		{name: "unset uses default", want: 9091},
		{name: "empty uses default", set: true, value: "", want: 9091},
		{name: "not a number falls back", set: true, value: "ninety", want: 9091,
			fallback: true, warning: "invalid integer format"},
		{name: "below minimum falls back", set: true, value: "80", want: 9091,
			fallback: true, warning: "below minimum"},
		{name: "above maximum falls back", set: true, value: "70000", want: 9091,
			fallback: true, warning: "exceeds maximum"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("TEST_HEALTH_PORT", tt.value)
			}
			result := LoadEnvInt("TEST_HEALTH_PORT", 9091, portBounds)
			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.fallback, result.FallbackApplied)
			if tt.warning != "" {
				require.Len(t, result.Warnings, 1)
				assert.Contains(t, result.Warnings[0], tt.warning)
			}
		})
	}
}

func TestLoadEnvInt_SscanfQuirks(t *testing.T) {
	// Sscanf stops at the first non-digit, so a decimal keeps its integer
	// part, and surrounding whitespace is skipped.
	t.Setenv("TEST_COUNT", "10.5")
	result := LoadEnvInt("TEST_COUNT", 100, nil)
	assert.Equal(t, 10, result.Value)
	assert.False(t, result.FallbackApplied)

	t.Setenv("TEST_COUNT", " 42 ")
	result = LoadEnvInt("TEST_COUNT", 100, nil)
	assert.Equal(t, 42, result.Value)
	assert.False(t, result.FallbackApplied)
}
