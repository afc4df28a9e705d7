package db

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ConnectionConfig holds the connection pool tuning. The recommendation API
// is read-heavy, so idle connections are kept warm rather than torn down.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the pool defaults.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Open connects to the Postgres instance named by DATABASE_URL and applies
// the pool configuration. Startup cannot proceed without a database, so any
// failure here is fatal.
func Open() *sql.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal(err)
	}

	cfg := getConnectionConfigFromEnv()
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	slog.Info("database connection established")
	return db
}

// getConnectionConfigFromEnv overlays the defaults with any pool settings
// present in the environment. Unparsable or non-positive values keep the
// default.
func getConnectionConfigFromEnv() ConnectionConfig {
	cfg := DefaultConnectionConfig()

	envPoolInt("DB_MAX_OPEN_CONNS", &cfg.MaxOpenConns)
	envPoolInt("DB_MAX_IDLE_CONNS", &cfg.MaxIdleConns)
	envPoolDuration("DB_CONN_MAX_LIFETIME", &cfg.ConnMaxLifetime)
	envPoolDuration("DB_CONN_MAX_IDLE_TIME", &cfg.ConnMaxIdleTime)

	return cfg
}

func envPoolInt(key string, dst *int) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	if val, err := strconv.Atoi(raw); err == nil && val > 0 {
		*dst = val
	}
}

func envPoolDuration(key string, dst *time.Duration) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	if val, err := time.ParseDuration(raw); err == nil && val > 0 {
		*dst = val
	}
}
