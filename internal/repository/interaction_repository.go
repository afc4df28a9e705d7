// Package repository defines the persistence interfaces consumed by the
// recommendation use cases. Implementations live under
// internal/infra/adapter/persistence.
package repository

import (
	"context"

	"cinerec/internal/domain/entity"
)

// InteractionRepository provides read access to the append-only interaction
// history owned by the interaction store.
type InteractionRepository interface {
	// ListByUser returns all interactions of one user, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*entity.Interaction, error)
	// ListAll returns the full interaction corpus for model builds.
	ListAll(ctx context.Context) ([]*entity.Interaction, error)
	// CountAll returns the total interaction count.
	CountAll(ctx context.Context) (int64, error)
	// RecentByUser returns the user's most recent interactions, newest first,
	// capped at limit.
	RecentByUser(ctx context.Context, userID int64, limit int) ([]*entity.Interaction, error)
}

// PreferenceRepository reads declared onboarding preferences.
type PreferenceRepository interface {
	// GetDeclared returns the user's declared preferences, or nil when the
	// user never completed onboarding.
	GetDeclared(ctx context.Context, userID int64) (*entity.DeclaredPreferences, error)
}
