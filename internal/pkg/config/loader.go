package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ConfigLoadResult is the outcome of loading one configuration value. Value
// carries the loaded value, or the default when FallbackApplied is set;
// Warnings holds one message per fallback applied.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// fallback builds the failure result shared by all loaders. The warning names
// the variable, the rejected value and the default that replaced it.
func fallback(envKey, raw string, cause error, defaultValue interface{}) ConfigLoadResult {
	warning := fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'",
		envKey, raw, cause, defaultValue)
	return ConfigLoadResult{Value: defaultValue, Warnings: []string{warning}, FallbackApplied: true}
}

func loaded(value interface{}) ConfigLoadResult {
	return ConfigLoadResult{Value: value}
}

// LoadEnvString reads a string variable. Unset or empty yields the default;
// no validation is applied.
func LoadEnvString(envKey, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}

// LoadEnvWithFallback reads a string variable and validates it. Unset or
// empty yields the default without a warning; a value the validator rejects
// yields the default with a warning. The loader never fails, so callers
// always get a usable value. A nil validator accepts anything.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return loaded(defaultValue)
	}
	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(envKey, value, err, defaultValue)
		}
	}
	return loaded(value)
}

// LoadEnvDuration reads a Go duration string ("30s", "5m", "1h30m"). Parse
// errors and validation failures both fall back to the default with a
// warning.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback(envKey, raw, err, defaultValue)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(envKey, raw, err, defaultValue)
		}
	}
	return loaded(parsed)
}

// LoadEnvInt reads an integer variable. Parsing uses fmt.Sscanf, so leading
// whitespace is tolerated and trailing text after the digits is ignored.
// Parse errors and validation failures both fall back to the default with a
// warning.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}
	var parsed int
	if _, err := fmt.Sscanf(raw, "%d", &parsed); err != nil {
		return fallback(envKey, raw, errors.New("invalid integer format"), defaultValue)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(envKey, raw, err, defaultValue)
		}
	}
	return loaded(parsed)
}
