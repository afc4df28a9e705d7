package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"cinerec/internal/engine/latent"
	pgRepo "cinerec/internal/infra/adapter/persistence/postgres"
	"cinerec/internal/infra/db"
	workerPkg "cinerec/internal/infra/worker"
	"cinerec/internal/observability/logging"
	"cinerec/internal/usecase/modelupdate"
)

func main() {
	logger := logging.NewLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Context for graceful shutdown of the auxiliary servers.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("rebuild_timeout", workerConfig.RebuildTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	// Start Prometheus metrics HTTP server
	startMetricsServer(ctx, logger)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	sweeper := setupSweeper(logger, database, workerConfig, workerMetrics)
	runScheduler(logger, sweeper, workerConfig, healthServer, cancel)
}

// initDatabase opens the database connection and applies pending migrations.
// Migrations are idempotent, so the worker and the API can both run them.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// setupSweeper wires the rebuild sweeper against the shared database.
//
// Model caches are per process. The sweep here validates the corpus, trains
// and appends the ModelUpdateLog row; the trained snapshot lives only in this
// worker. Each API instance swaps in its own snapshot, from its boot rebuild
// or when its interaction counter hits the threshold.
func setupSweeper(logger *slog.Logger, database *sql.DB, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) *workerPkg.Sweeper {
	updateConfig := modelupdate.DefaultConfig()
	updateConfig.Threshold = getEnvInt64("REBUILD_THRESHOLD", updateConfig.Threshold)
	updateConfig.Latent.K = int(getEnvInt64("LATENT_K", int64(updateConfig.Latent.K)))
	updateConfig.RebuildTimeout = cfg.RebuildTimeout

	updates := &modelupdate.Service{
		Interactions: pgRepo.NewInteractionRepo(database),
		Updates:      pgRepo.NewModelUpdateRepo(database),
		Models:       &latent.Cache{},
		Logger:       logger,
		Config:       updateConfig,
	}

	logger.Info("rebuild sweeper initialized",
		slog.Int64("threshold", updateConfig.Threshold),
		slog.Int("latent_k", updateConfig.Latent.K))

	return &workerPkg.Sweeper{
		Updates: updates,
		Metrics: metrics,
		Logger:  logger,
		Timeout: cfg.RebuildTimeout,
	}
}

// runScheduler starts the cron scheduler and blocks until SIGINT or SIGTERM.
func runScheduler(logger *slog.Logger, sweeper *workerPkg.Sweeper, cfg *workerPkg.WorkerConfig, healthServer *workerPkg.HealthServer, cancel context.CancelFunc) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(cfg.CronSchedule, sweeper.Run); err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// One sweep at boot so a fresh deployment serves a model without
	// waiting for the first tick.
	go sweeper.Run()

	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	healthServer.SetReady(false)
	stopCtx := c.Stop()
	cancel()

	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("running sweep did not finish before shutdown deadline")
	}
	logger.Info("worker stopped")
}

// getEnvInt64 reads an integer environment variable, falling back to def when
// unset or unparsable.
func getEnvInt64(key string, def int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
