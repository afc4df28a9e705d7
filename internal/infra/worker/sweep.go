package worker

import (
	"context"
	"log/slog"
	"time"

	"cinerec/internal/usecase/modelupdate"
)

// Sweeper runs one scheduled rebuild sweep per invocation. The cron
// scheduler calls Run on each tick; the sweep itself decides whether the
// corpus has grown enough to warrant a rebuild.
type Sweeper struct {
	Updates *modelupdate.Service
	Metrics *WorkerMetrics
	Logger  *slog.Logger

	// Timeout bounds one sweep run, rebuild included.
	Timeout time.Duration
}

// Run executes one sweep and records its outcome metrics. Errors are logged,
// never propagated; the next tick retries.
func (s *Sweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	start := time.Now()
	rebuilt, err := s.Updates.SweepDue(ctx)
	duration := time.Since(start)

	s.Metrics.RecordSweepDuration(duration.Seconds())
	if err != nil {
		s.Metrics.RecordSweepRun("failure")
		s.Logger.Error("rebuild sweep failed",
			slog.Any("error", err),
			slog.Duration("duration", duration))
		return
	}

	s.Metrics.RecordSweepRun("success")
	s.Metrics.RecordLastSuccess()
	if rebuilt {
		s.Metrics.RecordRebuild()
		s.Logger.Info("rebuild sweep rebuilt model", slog.Duration("duration", duration))
		return
	}
	s.Logger.Info("rebuild sweep skipped", slog.String("reason", "corpus below threshold"))
}
