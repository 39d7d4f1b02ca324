package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/spendboard/internal/config"
	"github.com/mcoot/spendboard/internal/currency"
	"github.com/mcoot/spendboard/internal/dependencies/clock"
	"github.com/mcoot/spendboard/internal/pacing"
	"github.com/mcoot/spendboard/internal/scheduler"
	"github.com/mcoot/spendboard/internal/services/auth"
	"github.com/mcoot/spendboard/internal/services/catalog"
	"github.com/mcoot/spendboard/internal/services/purchase"
	"github.com/mcoot/spendboard/internal/services/ranking"
	"github.com/mcoot/spendboard/internal/services/reconcile"
	"github.com/mcoot/spendboard/internal/services/seed"
	"github.com/mcoot/spendboard/internal/steam"
	"github.com/mcoot/spendboard/internal/storage"
	"github.com/mcoot/spendboard/internal/storage/memory"
	"github.com/mcoot/spendboard/internal/storage/postgres"
	redisstorage "github.com/mcoot/spendboard/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageTypeMemory
	StorageTypeRedis    = config.StorageTypeRedis
	StorageTypePostgres = config.StorageTypePostgres
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage
	// StorageKind is the backend actually in use
	StorageKind string
	// Degraded is set when a remote store was configured but the volatile
	// fallback is serving instead
	Degraded bool

	// External dependencies
	Clock       clock.Clock
	Converter   *currency.Converter
	SteamClient *steam.Client
	Pacer       *pacing.Pacer

	// Services
	AuthService      *auth.Service
	RankingService   *ranking.Service
	PurchaseService  *purchase.Service
	CatalogService   *catalog.Service
	ReconcileService *reconcile.Service
	SeedService      *seed.Service

	// Scheduler is nil unless scheduling was requested
	Scheduler *scheduler.Scheduler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// StorageFallback serves from the volatile store when the remote store is unreachable
	StorageFallback bool
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds PostgreSQL settings (required if StorageType is "postgres")
	PostgresConfig *postgres.Config
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// SteamConfig configures the Steam client; an empty APIKey disables library sync
	SteamConfig steam.Config
	// RatesURL is the exchange rate endpoint (optional)
	RatesURL string
	// RatesTTL is how long a fetched rate table is served (optional)
	RatesTTL time.Duration
	// CatalogDelay is the minimum interval between catalog requests (optional)
	CatalogDelay time.Duration
	// HTTPClient is used for outbound calls (optional)
	HTTPClient *http.Client
	// Scheduler enables the cron jobs when non-nil
	Scheduler *scheduler.Config
}

// FromEnv maps environment configuration onto a factory Config
func FromEnv(c *config.Config, logger *slog.Logger) Config {
	cfg := Config{
		Logger:          logger,
		StorageType:     c.StorageType,
		StorageFallback: c.StorageFallback,
		AuthConfig: auth.Config{
			AdminPassword:   c.AdminPassword,
			SessionSecret:   c.SessionSecret,
			CronSecret:      c.CronSecret,
			SessionDuration: c.SessionDuration,
		},
		SteamConfig: steam.Config{
			APIKey:       c.SteamAPIKey,
			APIBaseURL:   c.SteamAPIURL,
			StoreBaseURL: c.SteamStoreURL,
			Language:     c.SteamLanguage,
		},
		RatesURL:     c.RatesURL,
		RatesTTL:     c.RatesTTL,
		CatalogDelay: c.CatalogDelay,
	}

	switch c.StorageType {
	case StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		cfg.RedisConfig = &redisCfg
	case StorageTypePostgres:
		pgCfg := postgres.DefaultConfig()
		pgCfg.DSN = c.DatabaseURL
		cfg.PostgresConfig = &pgCfg
	}

	if c.SchedulerEnabled {
		schedCfg := scheduler.DefaultConfig()
		schedCfg.SyncSchedule = c.SyncSchedule
		schedCfg.ReturnsSchedule = c.ReturnsSchedule
		schedCfg.CloseMonthSchedule = c.CloseMonthSchedule
		cfg.Scheduler = &schedCfg
	}

	return cfg
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, kind, degraded, err := openStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg.SessionDuration = auth.DefaultConfig().SessionDuration
	}

	rates := currency.NewHTTPRateSource(cfg.RatesURL, cfg.HTTPClient)

	app, err := newWithDependencies(dependencies{
		store:        store,
		storageKind:  kind,
		degraded:     degraded,
		clock:        clock.New(),
		steam:        steam.NewClient(cfg.SteamConfig, cfg.HTTPClient),
		rates:        rates.Fetch,
		ratesTTL:     cfg.RatesTTL,
		catalogDelay: cfg.CatalogDelay,
		authConfig:   authCfg,
	}, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	if cfg.Scheduler != nil {
		sched, err := scheduler.New(*cfg.Scheduler, app.ReconcileService, app.RankingService, logger)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to create scheduler: %w", err)
		}
		app.Scheduler = sched
	}

	return app, nil
}

// openStorage connects the configured backend. When the remote store cannot
// be reached and fallback is enabled, the volatile store is returned instead.
func openStorage(cfg Config, logger *slog.Logger) (storage.Storage, string, bool, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	var (
		store storage.Storage
		err   error
	)
	switch storageType {
	case StorageTypeMemory:
		return memory.New(), StorageTypeMemory, false, nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, "", false, errors.New("RedisConfig required when StorageType is redis")
		}
		store, err = redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, "", false, errors.New("PostgresConfig required when StorageType is postgres")
		}
		store, err = postgres.New(*cfg.PostgresConfig)
	default:
		return nil, "", false, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'postgres'", storageType)
	}

	if err == nil {
		return store, storageType, false, nil
	}
	if !cfg.StorageFallback {
		return nil, "", false, err
	}

	logger.Warn("remote storage unreachable, serving from volatile memory store",
		slog.String("storage_type", storageType),
		slog.String("error", err.Error()),
	)
	return memory.New(), StorageTypeMemory, true, nil
}

// dependencies are the swappable inputs of an App
type dependencies struct {
	store        storage.Storage
	storageKind  string
	degraded     bool
	clock        clock.Clock
	steam        *steam.Client
	rates        currency.RateFetcher
	ratesTTL     time.Duration
	catalogDelay time.Duration
	authConfig   auth.Config
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(deps dependencies, logger *slog.Logger) (*App, error) {
	authService, err := auth.New(deps.clock, deps.authConfig)
	if err != nil {
		return nil, err
	}

	delay := deps.catalogDelay
	if delay <= 0 {
		delay = pacing.DefaultInterval
	}

	// Library sync and catalog search share one pacer so their requests interleave
	converter := currency.NewConverter(deps.rates, deps.clock, deps.ratesTTL, logger)
	pacer := pacing.New(deps.clock, delay)

	rankingService := ranking.New(deps.store, deps.clock, logger)
	purchaseService := purchase.New(deps.store, deps.clock, logger)
	catalogService := catalog.New(deps.steam, converter, pacer, logger)
	reconcileService := reconcile.New(deps.store, deps.steam, converter, pacer, deps.clock, logger)
	seedService := seed.New(deps.store, logger)

	return &App{
		Storage:          deps.store,
		StorageKind:      deps.storageKind,
		Degraded:         deps.degraded,
		Clock:            deps.clock,
		Converter:        converter,
		SteamClient:      deps.steam,
		Pacer:            pacer,
		AuthService:      authService,
		RankingService:   rankingService,
		PurchaseService:  purchaseService,
		CatalogService:   catalogService,
		ReconcileService: reconcileService,
		SeedService:      seedService,
	}, nil
}

// Close stops the scheduler and releases the store
func (a *App) Close() error {
	var errs []error
	if a.Scheduler != nil {
		if err := a.Scheduler.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("scheduler shutdown: %w", err))
		}
	}
	if err := a.Storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage close: %w", err))
	}
	return errors.Join(errs...)
}
