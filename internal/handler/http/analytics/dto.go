// Package analytics provides HTTP handlers for the feedback and model
// administration endpoints: outcome tracking, strategy performance reports
// and the rebuild log.
package analytics

import (
	"time"

	"cinerec/internal/domain/entity"
	"cinerec/internal/usecase/tracking"
)

// TrackDTO acknowledges a recorded outcome.
type TrackDTO struct {
	Status string `json:"status" example:"recorded"`
}

// PerformanceDTO is the response body for the strategy performance report.
type PerformanceDTO struct {
	Algorithm  string                    `json:"algorithm,omitempty" example:"latent"`
	WindowDays int                       `json:"window_days" example:"30"`
	Strategies []tracking.StrategyReport `json:"strategies"`
}

// UpdateLogDTO is one model rebuild record.
type UpdateLogDTO struct {
	ID                    int64     `json:"id" example:"7"`
	UpdateType            string    `json:"update_type" example:"full_rebuild"`
	Trigger               string    `json:"trigger" example:"manual"`
	InteractionsProcessed int64     `json:"interactions_processed" example:"1250"`
	ExplainedVariance     float64   `json:"explained_variance" example:"0.83"`
	DurationMs            int64     `json:"duration_ms" example:"412"`
	Success               bool      `json:"success" example:"true"`
	Error                 string    `json:"error,omitempty"`
	CreatedAt             time.Time `json:"created_at" example:"2026-08-01T12:00:00Z"`
}

func updateLogDTO(log *entity.ModelUpdateLog) UpdateLogDTO {
	return UpdateLogDTO{
		ID:                    log.ID,
		UpdateType:            log.UpdateType,
		Trigger:               log.Trigger,
		InteractionsProcessed: log.InteractionsProcessed,
		ExplainedVariance:     log.ExplainedVariance,
		DurationMs:            log.Duration.Milliseconds(),
		Success:               log.Success,
		Error:                 log.ErrorMessage,
		CreatedAt:             log.CreatedAt,
	}
}
