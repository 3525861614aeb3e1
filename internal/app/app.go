package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tarcart/internal/cache"
	"tarcart/internal/config"
	"tarcart/internal/db"
	"tarcart/internal/geocode"
	httpserver "tarcart/internal/http"
	"tarcart/internal/http/handlers"
	"tarcart/internal/http/middleware"
	"tarcart/internal/password"
	"tarcart/internal/repository"
	"tarcart/internal/service"
	"tarcart/internal/ws"
)

// App wires the tarcart dependency graph.
type App struct {
	server      *httpserver.Server
	hub         *ws.Hub
	pool        *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pool, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	var (
		redisClient *redis.Client
		reports     service.ReportStore
	)
	if cfg.RedisEnabled() {
		redisClient, err = cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			pool.Close()
			return nil, err
		}
		reports = cache.NewReportCache(redisClient, cfg.ReportTTL())
	}

	stationRepo := repository.NewStationRepository(pool)
	ledgerRepo := repository.NewLedgerRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)

	geocoder := geocode.NewClient(cfg.Geocoding.APIKey, cfg.Geocoding.BaseURL, logger)
	hub := ws.NewHub(0, logger)

	directory := service.NewDirectoryService(stationRepo, geocoder, reports, logger)
	queue := service.NewQueueService(submissionRepo, logger)
	moderation := service.NewModerationService(submissionRepo, reports, hub, logger)
	analytics := service.NewAnalyticsService(ledgerRepo, stationRepo, reports, logger)

	hasher := password.NewBcryptHasher(0)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandlers:        handlers.NewAuthHandlers(cfg.Admin.Token, cfg.Admin.PasswordHash, hasher, logger),
		StationsHandlers:    handlers.NewStationsHandlers(directory, analytics, logger),
		SubmissionsHandlers: handlers.NewSubmissionsHandlers(queue, logger),
		AdminHandlers:       handlers.NewAdminHandlers(queue, moderation, directory, logger),
		AnalyticsHandlers:   handlers.NewAnalyticsHandlers(analytics, logger),
		HealthHandler:       handlers.NewHealthHandler(),
		RootHandler:         handlers.NewRootHandler(),
		PriceFeedHandler:    hub.Handler(),
	}, middleware.RequireAdmin(cfg.Admin.Token))

	server := httpserver.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	)

	return &App{
		server:      server,
		hub:         hub,
		pool:        pool,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server and the websocket keepalive loop.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Start(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.pool != nil {
		if err := a.pool.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
