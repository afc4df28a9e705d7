package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cinerec/internal/domain/entity"
	"cinerec/internal/repository"
)

type ModelUpdateRepo struct {
	db *sql.DB
}

func NewModelUpdateRepo(db *sql.DB) repository.ModelUpdateRepository {
	return &ModelUpdateRepo{db: db}
}

func (repo *ModelUpdateRepo) Append(ctx context.Context, log *entity.ModelUpdateLog) error {
	const query = `
INSERT INTO model_update_logs
	(update_type, triggered_by, interactions_processed, explained_variance, duration_ms, success, error_message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		log.UpdateType, log.Trigger, log.InteractionsProcessed,
		log.ExplainedVariance, log.Duration.Milliseconds(),
		log.Success, log.ErrorMessage, log.CreatedAt,
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	return nil
}

func (repo *ModelUpdateRepo) Recent(ctx context.Context, limit int) ([]*entity.ModelUpdateLog, error) {
	const query = `
SELECT id, update_type, triggered_by, interactions_processed, explained_variance, duration_ms, success, error_message, created_at
FROM model_update_logs
ORDER BY created_at DESC
LIMIT $1`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("Recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	logs := make([]*entity.ModelUpdateLog, 0, limit)
	for rows.Next() {
		var log entity.ModelUpdateLog
		var durationMs int64
		var errMsg sql.NullString
		if err := rows.Scan(&log.ID, &log.UpdateType, &log.Trigger,
			&log.InteractionsProcessed, &log.ExplainedVariance,
			&durationMs, &log.Success, &errMsg, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("Recent: Scan: %w", err)
		}
		log.Duration = time.Duration(durationMs) * time.Millisecond
		log.ErrorMessage = errMsg.String
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}

func (repo *ModelUpdateRepo) LastProcessed(ctx context.Context) (int64, error) {
	const query = `
SELECT interactions_processed
FROM model_update_logs
WHERE success
ORDER BY created_at DESC
LIMIT 1`
	var count int64
	err := repo.db.QueryRowContext(ctx, query).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("LastProcessed: %w", err)
	}
	return count, nil
}
