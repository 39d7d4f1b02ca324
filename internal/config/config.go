// Package config reads server configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage type values for STORAGE_TYPE
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// Default cron expressions
const (
	DefaultSyncSchedule       = "0 */6 * * *"
	DefaultReturnsSchedule    = "30 */6 * * *"
	DefaultCloseMonthSchedule = "5 0 1 * *"
)

// Config holds all server settings
type Config struct {
	Port int

	StorageType     string
	StorageFallback bool
	RedisURL        string
	DatabaseURL     string

	AdminPassword   string
	SessionSecret   string
	SessionDuration time.Duration
	CronSecret      string

	SteamAPIKey   string
	SteamAPIURL   string
	SteamStoreURL string
	SteamLanguage string
	RatesURL      string
	RatesTTL      time.Duration
	CatalogDelay  time.Duration

	AllowedOrigins []string
	SeedPath       string

	SchedulerEnabled   bool
	SyncSchedule       string
	ReturnsSchedule    string
	CloseMonthSchedule string

	LogLevel slog.Level
}

// Load reads .env (if present) into the environment, then builds a Config
// from the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config using lookup to read variables
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	r := reader{lookup: lookup}

	cfg := &Config{
		Port: r.int("PORT", 8080),

		StorageType:     strings.ToLower(r.string("STORAGE_TYPE", StorageTypeMemory)),
		StorageFallback: r.bool("STORAGE_FALLBACK", true),
		RedisURL:        r.string("REDIS_URL", ""),
		DatabaseURL:     r.string("DATABASE_URL", ""),

		AdminPassword:   r.string("ADMIN_PASSWORD", ""),
		SessionSecret:   r.string("SESSION_SECRET", ""),
		SessionDuration: r.duration("SESSION_TTL", 24*time.Hour),
		CronSecret:      r.string("CRON_SECRET", ""),

		SteamAPIKey:   r.string("STEAM_API_KEY", ""),
		SteamAPIURL:   r.string("STEAM_API_URL", ""),
		SteamStoreURL: r.string("STEAM_STORE_URL", ""),
		SteamLanguage: r.string("STEAM_LANGUAGE", ""),
		RatesURL:      r.string("RATES_URL", ""),
		RatesTTL:      r.duration("RATES_TTL", time.Hour),
		CatalogDelay:  r.duration("CATALOG_DELAY", 250*time.Millisecond),

		AllowedOrigins: r.list("ALLOWED_ORIGINS", []string{"*"}),
		SeedPath:       r.string("SEED_PATH", "data/participants.json"),

		SchedulerEnabled:   r.bool("SCHEDULER_ENABLED", true),
		SyncSchedule:       r.string("SYNC_SCHEDULE", DefaultSyncSchedule),
		ReturnsSchedule:    r.string("RETURNS_SCHEDULE", DefaultReturnsSchedule),
		CloseMonthSchedule: r.string("CLOSE_MONTH_SCHEDULE", DefaultCloseMonthSchedule),

		LogLevel: r.level("LOG_LEVEL", slog.LevelInfo),
	}

	if err := errors.Join(append(r.errs, cfg.validate())...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}

	switch c.StorageType {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
		}
	case StorageTypePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL required when STORAGE_TYPE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, redis or postgres", c.StorageType))
	}

	if c.CatalogDelay < 0 {
		errs = append(errs, errors.New("CATALOG_DELAY must not be negative"))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// reader collects parse errors while reading variables
type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) raw(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (r *reader) string(key, def string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return n
}

func (r *reader) bool(key string, def bool) bool {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return b
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return d
}

func (r *reader) list(key string, def []string) []string {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r *reader) level(key string, def slog.Level) slog.Level {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return level
}
