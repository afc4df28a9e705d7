// Package worker carries the scheduled-rebuild runtime: configuration,
// sweep metrics and the probe server used by the worker binary.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"cinerec/internal/pkg/config"
)

// WorkerConfig holds the configuration for the rebuild worker.
// It controls the sweep schedule, the rebuild timeout and the probe server.
//
// All fields have defaults and validation rules; loading is fail-open, so
// the worker always starts with a usable configuration.
type WorkerConfig struct {
	// CronSchedule is the cron expression for the rebuild sweep.
	// Format: "minute hour day month weekday"
	// Default: "0 */6 * * *" (every 6 hours)
	CronSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Default: "UTC"
	Timezone string

	// RebuildTimeout bounds one sweep run, model build included.
	// Range: 30s-1h. Default: 5 minutes.
	RebuildTimeout time.Duration

	// HealthPort is the port for the probe HTTP server.
	// Range: 1024-65535. Default: 9091.
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with production defaults: a sweep
// every 6 hours, UTC scheduling and a 5-minute rebuild budget.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:   "0 */6 * * *",
		Timezone:       "UTC",
		RebuildTimeout: 5 * time.Minute,
		HealthPort:     9091,
	}
}

// Validate checks the configuration values using the shared validators.
// All failures are collected and returned together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.RebuildTimeout, 30*time.Second, 1*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("rebuild timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration from environment
// variables with validation and fallback to defaults on failure.
//
// Environment variables:
//   - SWEEP_CRON_SCHEDULE: cron expression (default "0 */6 * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default "UTC")
//   - REBUILD_TIMEOUT: duration string, e.g. "5m" (default 5 minutes)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default 9091)
//
// Loading is fail-open: an invalid value falls back to its default, logs a
// warning and increments the fallback metrics. The returned error is always
// nil; the signature keeps call sites uniform with loaders that can fail.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	applyFallback := func(field string, warnings []string) {
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field, "default")
		for _, warning := range warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("SWEEP_CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	if result.FallbackApplied {
		applyFallback("cron_schedule", result.Warnings)
	}

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		applyFallback("timezone", result.Warnings)
	}

	result = config.LoadEnvDuration("REBUILD_TIMEOUT", cfg.RebuildTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 30*time.Second, 1*time.Hour)
	})
	cfg.RebuildTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		applyFallback("rebuild_timeout", result.Warnings)
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		applyFallback("health_port", result.Warnings)
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
