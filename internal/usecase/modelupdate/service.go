// Package modelupdate owns the latent model lifecycle: an interaction
// counter that triggers asynchronous rebuilds at a threshold, a synchronous
// rebuild for the admin endpoint and the scheduled worker sweep. Every
// attempt lands in the append-only update log.
package modelupdate

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"cinerec/internal/domain/entity"
	"cinerec/internal/engine/latent"
	"cinerec/internal/observability/metrics"
	"cinerec/internal/repository"
)

// Rebuild triggers recorded in the update log.
const (
	TriggerThreshold = "threshold"
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// UpdateTypeFull is the only update type currently performed: a full
// factorization over the interaction snapshot.
const UpdateTypeFull = "full_rebuild"

// DefaultThreshold is the new-interaction count that triggers a rebuild.
const DefaultThreshold = 50

// defaultRebuildTimeout bounds a rebuild started off the request path.
const defaultRebuildTimeout = 5 * time.Minute

// Config carries the rebuild tuning knobs.
type Config struct {
	// Threshold is the new-interaction count that fires an async rebuild.
	Threshold int64
	// Latent is the factorization configuration.
	Latent latent.Config
	// RebuildTimeout bounds background rebuilds.
	RebuildTimeout time.Duration
}

// DefaultConfig returns the standard rebuild tuning.
func DefaultConfig() Config {
	return Config{
		Threshold:      DefaultThreshold,
		Latent:         latent.DefaultConfig(),
		RebuildTimeout: defaultRebuildTimeout,
	}
}

// Service coordinates model rebuilds. The pending counter is per instance;
// horizontally scaled deployments rebuild independently.
type Service struct {
	Interactions repository.InteractionRepository
	Updates      repository.ModelUpdateRepository
	Models       *latent.Cache
	Logger       *slog.Logger
	Config       Config

	pending atomic.Int64
	group   singleflight.Group
}

// NoteInteraction counts one new interaction. Crossing the threshold fires
// exactly one background rebuild; the caller never blocks on it.
func (s *Service) NoteInteraction() {
	n := s.pending.Add(1)
	metrics.UpdateInteractionsSinceRebuild(n)
	if n != s.threshold() {
		return
	}
	s.pending.Add(-s.threshold())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.rebuildTimeout())
		defer cancel()
		if _, err := s.ForceRebuild(ctx, TriggerThreshold); err != nil {
			s.logger().ErrorContext(ctx, "threshold rebuild failed", "error", err)
		}
	}()
}

// Pending returns the interactions counted since the last rebuild trigger.
func (s *Service) Pending() int64 {
	return s.pending.Load()
}

// ForceRebuild rebuilds the model synchronously. Concurrent callers share a
// single rebuild via singleflight. The returned log is also persisted; on
// build failure the previous model stays active and the build error is
// returned alongside the failure log.
func (s *Service) ForceRebuild(ctx context.Context, trigger string) (*entity.ModelUpdateLog, error) {
	v, err, _ := s.group.Do("rebuild", func() (any, error) {
		return s.rebuild(ctx, trigger)
	})
	log, _ := v.(*entity.ModelUpdateLog)
	return log, err
}

// SweepDue rebuilds when the corpus has grown past the threshold since the
// last successful rebuild. Used by the scheduled worker.
func (s *Service) SweepDue(ctx context.Context) (bool, error) {
	total, err := s.Interactions.CountAll(ctx)
	if err != nil {
		return false, fmt.Errorf("count interactions: %w", err)
	}
	last, err := s.Updates.LastProcessed(ctx)
	if err != nil {
		return false, fmt.Errorf("read last processed count: %w", err)
	}
	if total-last < s.threshold() {
		return false, nil
	}
	if _, err := s.ForceRebuild(ctx, TriggerScheduled); err != nil {
		return false, err
	}
	return true, nil
}

// History returns the most recent rebuild records, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*entity.ModelUpdateLog, error) {
	if limit <= 0 {
		limit = 20
	}
	logs, err := s.Updates.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list update logs: %w", err)
	}
	return logs, nil
}

// rebuild snapshots the corpus, builds a fresh model and swaps it in. Only
// the pointer swap mutates shared state; readers keep the old snapshot until
// the swap lands.
func (s *Service) rebuild(ctx context.Context, trigger string) (*entity.ModelUpdateLog, error) {
	start := time.Now()
	record := &entity.ModelUpdateLog{
		UpdateType: UpdateTypeFull,
		Trigger:    trigger,
		CreatedAt:  start,
	}

	interactions, err := s.Interactions.ListAll(ctx)
	if err != nil {
		return s.finish(ctx, record, start, fmt.Errorf("snapshot interactions: %w", err))
	}
	record.InteractionsProcessed = int64(len(interactions))

	model, err := latent.Build(interactions, s.latentConfig())
	if err != nil {
		return s.finish(ctx, record, start, fmt.Errorf("build latent model: %w", err))
	}

	s.Models.Store(model)
	record.Success = true
	record.ExplainedVariance = model.ExplainedVariance
	return s.finish(ctx, record, start, nil)
}

// finish stamps the record, persists it and emits the rebuild metrics. A
// failed log write is logged but never masks the build result.
func (s *Service) finish(ctx context.Context, record *entity.ModelUpdateLog, start time.Time, buildErr error) (*entity.ModelUpdateLog, error) {
	record.Duration = time.Since(start)
	if buildErr != nil {
		record.ErrorMessage = buildErr.Error()
	}
	metrics.RecordModelRebuild(record.Trigger, record.Success, record.Duration, record.ExplainedVariance)

	if err := s.Updates.Append(ctx, record); err != nil {
		s.logger().ErrorContext(ctx, "append update log failed", "trigger", record.Trigger, "error", err)
	}

	if buildErr != nil {
		s.logger().WarnContext(ctx, "model rebuild failed",
			"trigger", record.Trigger, "error", buildErr)
		return record, buildErr
	}
	s.logger().InfoContext(ctx, "model rebuilt",
		"trigger", record.Trigger,
		"interactions", record.InteractionsProcessed,
		"explained_variance", record.ExplainedVariance,
		"duration", record.Duration)
	return record, nil
}

func (s *Service) threshold() int64 {
	if s.Config.Threshold > 0 {
		return s.Config.Threshold
	}
	return DefaultThreshold
}

func (s *Service) rebuildTimeout() time.Duration {
	if s.Config.RebuildTimeout > 0 {
		return s.Config.RebuildTimeout
	}
	return defaultRebuildTimeout
}

func (s *Service) latentConfig() latent.Config {
	if s.Config.Latent.K > 0 {
		return s.Config.Latent
	}
	return latent.DefaultConfig()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
