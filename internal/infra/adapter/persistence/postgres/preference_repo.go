package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"cinerec/internal/domain/entity"
	"cinerec/internal/repository"
)

type PreferenceRepo struct {
	db *sql.DB
}

func NewPreferenceRepo(db *sql.DB) repository.PreferenceRepository {
	return &PreferenceRepo{db: db}
}

func (repo *PreferenceRepo) GetDeclared(ctx context.Context, userID int64) (*entity.DeclaredPreferences, error) {
	const query = `
SELECT user_id, liked_genres, disliked_genres
FROM user_preferences
WHERE user_id = $1`

	prefs := &entity.DeclaredPreferences{}
	var liked, disliked []byte
	err := repo.db.QueryRowContext(ctx, query, userID).Scan(&prefs.UserID, &liked, &disliked)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetDeclared: %w", err)
	}

	if len(liked) > 0 {
		if err := json.Unmarshal(liked, &prefs.LikedGenres); err != nil {
			return nil, fmt.Errorf("GetDeclared: liked_genres: %w", err)
		}
	}
	if len(disliked) > 0 {
		if err := json.Unmarshal(disliked, &prefs.DislikedGenres); err != nil {
			return nil, fmt.Errorf("GetDeclared: disliked_genres: %w", err)
		}
	}
	return prefs, nil
}
