package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"cinerec/internal/engine/latent"
	hhttp "cinerec/internal/handler/http"
	hanalytics "cinerec/internal/handler/http/analytics"
	"cinerec/internal/handler/http/middleware"
	hrecommend "cinerec/internal/handler/http/recommend"
	"cinerec/internal/handler/http/requestid"
	pgRepo "cinerec/internal/infra/adapter/persistence/postgres"
	"cinerec/internal/infra/db"
	"cinerec/internal/infra/provider"
	"cinerec/internal/observability/logging"
	"cinerec/internal/observability/slo"
	"cinerec/internal/pkg/config"
	"cinerec/internal/usecase/modelupdate"
	recUC "cinerec/internal/usecase/recommend"
	"cinerec/internal/usecase/tracking"
)

const (
	defaultHTTPPort       = "8080"
	defaultRateLimitRPS   = 10.0
	defaultRateLimitBurst = 20
	maxRequestBodyBytes   = 1 << 20 // 1 MiB
	requestTimeout        = 15 * time.Second
)

func main() {
	logger := logging.NewLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Publish SLO gauges from the rolling request window once a minute.
	slo.Default.Start(ctx, time.Minute)

	srv := setupServer(ctx, logger, database)
	runServer(srv, logger)
}

// initDatabase opens the connection pool and applies pending migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database ready")
	return database
}

// getVersion returns the application version from APP_VERSION.
func getVersion() string {
	if v := os.Getenv("APP_VERSION"); v != "" {
		return v
	}
	return "dev"
}

// setupServer wires repositories, services, handlers and middleware into a
// configured *http.Server.
func setupServer(ctx context.Context, logger *slog.Logger, database *sql.DB) *http.Server {
	interactionRepo := pgRepo.NewInteractionRepo(database)
	movieRepo := pgRepo.NewMovieRepo(database)
	preferenceRepo := pgRepo.NewPreferenceRepo(database)
	embeddingRepo := pgRepo.NewMovieEmbeddingRepo(database)
	eventRepo := pgRepo.NewEventRepo(database)
	updateRepo := pgRepo.NewModelUpdateRepo(database)

	// The model cache is shared between the serving path and the rebuild
	// trigger so a rebuild is visible on the next request.
	models := &latent.Cache{}

	updateConfig := modelupdate.DefaultConfig()
	updateConfig.Threshold = getEnvInt64("REBUILD_THRESHOLD", updateConfig.Threshold)
	updateConfig.Latent.K = int(getEnvInt64("LATENT_K", int64(updateConfig.Latent.K)))
	updates := &modelupdate.Service{
		Interactions: interactionRepo,
		Updates:      updateRepo,
		Models:       models,
		Logger:       logger,
		Config:       updateConfig,
	}

	events := &tracking.Service{
		Events: eventRepo,
		Logger: logger,
	}

	recConfig := recUC.DefaultConfig()
	recConfig.ColdStartThreshold = int(getEnvInt64("COLD_START_THRESHOLD", int64(recConfig.ColdStartThreshold)))
	if d := getEnvDuration("PROVIDER_TIMEOUT", recConfig.ProviderTimeout); d > 0 {
		recConfig.ProviderTimeout = d
	}

	recommender := &recUC.Service{
		Interactions: interactionRepo,
		Movies:       movieRepo,
		Preferences:  preferenceRepo,
		Models:       models,
		Embedding:    provider.NewEmbeddingProvider(interactionRepo, embeddingRepo),
		Graph:        setupGraphProvider(logger),
		Exposures:    events,
		Logger:       logger,
		Config:       recConfig,
	}

	// Build an initial model at boot so the first requests are not stuck on
	// the popularity fallback. A corpus below the floor is not an error.
	warmModelCache(ctx, logger, updates)

	mux := setupRoutes(ctx, logger, database, recommender, events, updates, models)
	handler := applyMiddleware(mux, logger)

	port := config.LoadEnvString("HTTP_PORT", defaultHTTPPort)

	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}
}

// setupGraphProvider constructs the graph similarity provider when
// GRAPH_PROVIDER_URL is set. A nil provider disables the strategy.
func setupGraphProvider(logger *slog.Logger) recUC.SimilarityProvider {
	baseURL := os.Getenv("GRAPH_PROVIDER_URL")
	if baseURL == "" {
		logger.Info("graph provider disabled")
		return nil
	}
	apiKey := os.Getenv("GRAPH_PROVIDER_API_KEY")
	logger.Info("graph provider enabled", slog.String("url", baseURL))
	return provider.NewGraphProvider(baseURL, apiKey, nil)
}

// warmModelCache runs one rebuild attempt at boot. Failure leaves the cache
// empty; the API serves degraded until the worker rebuilds.
func warmModelCache(ctx context.Context, logger *slog.Logger, updates *modelupdate.Service) {
	record, err := updates.ForceRebuild(ctx, modelupdate.TriggerScheduled)
	if err != nil {
		logger.Warn("initial model build skipped", slog.Any("error", err))
		return
	}
	logger.Info("initial model built",
		slog.Int64("interactions", record.InteractionsProcessed),
		slog.Float64("explained_variance", record.ExplainedVariance))
}

// setupRoutes registers all HTTP routes. The recommendation endpoints sit
// behind a per-IP rate limiter; analytics and probes do not.
func setupRoutes(ctx context.Context, logger *slog.Logger, database *sql.DB, recommender *recUC.Service, events *tracking.Service, updates *modelupdate.Service, models *latent.Cache) *http.ServeMux {
	mux := http.NewServeMux()

	limiter := setupRateLimiter(ctx, logger)
	recMux := http.NewServeMux()
	hrecommend.Register(recMux, recommender)
	mux.Handle("/recommendations", limiter.Middleware(recMux))
	mux.Handle("/recommendations/", limiter.Middleware(recMux))

	hanalytics.Register(mux, events, updates)

	mux.Handle("GET /healthz", &hhttp.HealthHandler{DB: database, Models: models, Version: getVersion()})
	mux.Handle("GET /readyz", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /livez", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	return mux
}

// setupRateLimiter builds the per-client token bucket for the recommendation
// endpoints, honoring trusted proxy configuration for client IP extraction.
func setupRateLimiter(ctx context.Context, logger *slog.Logger) *middleware.RateLimiter {
	var extractor middleware.IPExtractor = &middleware.RemoteAddrExtractor{}
	proxyConfig, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Warn("invalid trusted proxy configuration, using remote address", slog.Any("error", err))
	} else if proxyConfig.Enabled {
		extractor = middleware.NewTrustedProxyExtractor(*proxyConfig)
		logger.Info("trusted proxy extraction enabled")
	}

	rps := getEnvFloat("RATE_LIMIT_RPS", defaultRateLimitRPS)
	burst := int(getEnvInt64("RATE_LIMIT_BURST", defaultRateLimitBurst))

	limiter := middleware.NewRateLimiter(rps, burst, extractor)
	limiter.StartCleanup(ctx, 5*time.Minute, 15*time.Minute)

	logger.Info("rate limiter configured",
		slog.Float64("rps", rps),
		slog.Int("burst", burst))
	return limiter
}

// applyMiddleware wraps the mux with the shared middleware chain. Handlers
// are applied in reverse order, so the first listed runs innermost.
func applyMiddleware(mux *http.ServeMux, logger *slog.Logger) http.Handler {
	var handler http.Handler = mux
	handler = hhttp.MetricsMiddleware(handler)
	handler = hhttp.Timeout(requestTimeout)(handler)
	handler = hhttp.InputValidation()(handler)
	handler = hhttp.LimitRequestBody(maxRequestBodyBytes)(handler)
	handler = hhttp.Logging(logger)(handler)
	handler = hhttp.Recover(logger)(handler)
	handler = requestid.Middleware(handler)

	corsConfig, err := middleware.LoadCORSConfigFromSource(&middleware.EnvConfigSource{}, &middleware.SlogAdapter{Logger: logger})
	if err != nil {
		logger.Warn("CORS disabled", slog.Any("error", err))
		return handler
	}
	handler = middleware.CORS(*corsConfig)(handler)
	return handler
}

// runServer starts the HTTP server and blocks until SIGINT or SIGTERM, then
// shuts down gracefully.
func runServer(srv *http.Server, logger *slog.Logger) {
	go func() {
		logger.Info("api server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("api server stopped")
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

// getEnvFloat reads a float environment variable with a default.
func getEnvFloat(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// getEnvDuration reads a duration environment variable with a default.
func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
