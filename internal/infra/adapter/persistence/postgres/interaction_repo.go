package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"cinerec/internal/domain/entity"
	"cinerec/internal/repository"
)

type InteractionRepo struct {
	db *sql.DB
}

func NewInteractionRepo(db *sql.DB) repository.InteractionRepository {
	return &InteractionRepo{db: db}
}

const interactionColumns = `user_id, movie_id, interaction_type, value, created_at`

func (repo *InteractionRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.Interaction, error) {
	const query = `
SELECT ` + interactionColumns + `
FROM interactions
WHERE user_id = $1
ORDER BY created_at DESC`
	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanInteractions(rows, "ListByUser")
}

func (repo *InteractionRepo) ListAll(ctx context.Context) ([]*entity.Interaction, error) {
	const query = `
SELECT ` + interactionColumns + `
FROM interactions
ORDER BY created_at`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanInteractions(rows, "ListAll")
}

func (repo *InteractionRepo) CountAll(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM interactions`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountAll: %w", err)
	}
	return count, nil
}

func (repo *InteractionRepo) RecentByUser(ctx context.Context, userID int64, limit int) ([]*entity.Interaction, error) {
	const query = `
SELECT ` + interactionColumns + `
FROM interactions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("RecentByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanInteractions(rows, "RecentByUser")
}

func scanInteractions(rows *sql.Rows, op string) ([]*entity.Interaction, error) {
	interactions := make([]*entity.Interaction, 0, 100)
	for rows.Next() {
		var in entity.Interaction
		var value sql.NullFloat64
		if err := rows.Scan(&in.UserID, &in.MovieID, &in.Signal, &value, &in.Timestamp); err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		if value.Valid {
			in.Value = value.Float64
		}
		interactions = append(interactions, &in)
	}
	return interactions, rows.Err()
}
