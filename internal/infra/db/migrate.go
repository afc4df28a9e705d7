package db

import (
	"database/sql"
)

// MigrateUp creates the engine schema. Every statement is idempotent so the
// migration can run on each startup.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS movies (
    id           BIGINT PRIMARY KEY,
    title        TEXT NOT NULL,
    genres       JSONB,
    vote_count   BIGINT NOT NULL DEFAULT 0,
    vote_average DOUBLE PRECISION NOT NULL DEFAULT 0,
    popularity   DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS interactions (
    id               BIGSERIAL PRIMARY KEY,
    user_id          BIGINT NOT NULL,
    movie_id         BIGINT NOT NULL REFERENCES movies(id),
    interaction_type VARCHAR(20) NOT NULL,
    value            DOUBLE PRECISION,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS user_preferences (
    user_id         BIGINT PRIMARY KEY,
    liked_genres    JSONB,
    disliked_genres JSONB,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS recommendation_events (
    id                 UUID PRIMARY KEY,
    user_id            BIGINT NOT NULL,
    movie_id           BIGINT NOT NULL,
    algorithm          VARCHAR(30) NOT NULL,
    position           INT NOT NULL,
    score              DOUBLE PRECISION NOT NULL,
    clicked            BOOLEAN NOT NULL DEFAULT FALSE,
    clicked_at         TIMESTAMPTZ,
    rated              BOOLEAN NOT NULL DEFAULT FALSE,
    rated_at           TIMESTAMPTZ,
    rating_value       DOUBLE PRECISION,
    added_to_favorites BOOLEAN NOT NULL DEFAULT FALSE,
    added_to_watchlist BOOLEAN NOT NULL DEFAULT FALSE,
    thumbs_up          BOOLEAN NOT NULL DEFAULT FALSE,
    thumbs_up_at       TIMESTAMPTZ,
    thumbs_down        BOOLEAN NOT NULL DEFAULT FALSE,
    thumbs_down_at     TIMESTAMPTZ,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS model_update_logs (
    id                     BIGSERIAL PRIMARY KEY,
    update_type            VARCHAR(30) NOT NULL,
    triggered_by           VARCHAR(30) NOT NULL,
    interactions_processed BIGINT NOT NULL DEFAULT 0,
    explained_variance     DOUBLE PRECISION NOT NULL DEFAULT 0,
    duration_ms            BIGINT NOT NULL DEFAULT 0,
    success                BOOLEAN NOT NULL DEFAULT FALSE,
    error_message          TEXT,
    created_at             TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// user history reads, newest first
		`CREATE INDEX IF NOT EXISTS idx_interactions_user_created ON interactions(user_id, created_at DESC)`,
		// item co-interaction vectors
		`CREATE INDEX IF NOT EXISTS idx_interactions_movie_id ON interactions(movie_id)`,
		// candidate pool and popularity fallback scans
		`CREATE INDEX IF NOT EXISTS idx_movies_vote_count ON movies(vote_count)`,
		// outcome lookups for the (user, movie) pair
		`CREATE INDEX IF NOT EXISTS idx_events_user_movie_created ON recommendation_events(user_id, movie_id, created_at DESC)`,
		// performance aggregation window
		`CREATE INDEX IF NOT EXISTS idx_events_algorithm_created ON recommendation_events(algorithm, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_model_update_logs_created ON model_update_logs(created_at DESC)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// pgvector is optional: without the extension the embedding strategy
	// stays disabled and these statements fail silently.
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`)
	_, _ = db.Exec(`
CREATE TABLE IF NOT EXISTS movie_embeddings (
    movie_id   BIGINT PRIMARY KEY REFERENCES movies(id) ON DELETE CASCADE,
    embedding  vector(384) NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	// lists=100 suits catalogs below one million titles
	_, _ = db.Exec(`
CREATE INDEX IF NOT EXISTS idx_movie_embeddings_vector
    ON movie_embeddings USING ivfflat (embedding vector_cosine_ops)
    WITH (lists = 100)`)

	return nil
}

// MigrateDown removes the engine-owned tables. The movies table survives:
// it is owned by the catalog ingestion pipeline.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP INDEX IF EXISTS idx_movie_embeddings_vector`,
		`DROP TABLE IF EXISTS movie_embeddings CASCADE`,
		`DROP TABLE IF EXISTS model_update_logs CASCADE`,
		`DROP TABLE IF EXISTS recommendation_events CASCADE`,
		`DROP TABLE IF EXISTS user_preferences CASCADE`,
		`DROP TABLE IF EXISTS interactions CASCADE`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
