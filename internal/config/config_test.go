package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, StorageTypeMemory, cfg.StorageType)
	assert.True(t, cfg.StorageFallback)
	assert.Equal(t, time.Hour, cfg.RatesTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.CatalogDelay)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, DefaultSyncSchedule, cfg.SyncSchedule)
	assert.Equal(t, DefaultCloseMonthSchedule, cfg.CloseMonthSchedule)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestOverrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"PORT":             "9090",
		"STORAGE_TYPE":     "Redis",
		"REDIS_URL":        "redis://cache:6379",
		"STORAGE_FALLBACK": "false",
		"CATALOG_DELAY":    "1s",
		"ALLOWED_ORIGINS":  "https://a.example, https://b.example ,",
		"LOG_LEVEL":        "debug",
		"CRON_SECRET":      "  s3cret  ",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StorageTypeRedis, cfg.StorageType)
	assert.False(t, cfg.StorageFallback)
	assert.Equal(t, time.Second, cfg.CatalogDelay)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "s3cret", cfg.CronSecret)
}

func TestEmptyValuesUseDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{"PORT": "", "STORAGE_TYPE": " "}))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageTypeMemory, cfg.StorageType)
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad port", map[string]string{"PORT": "abc"}, "invalid PORT"},
		{"port range", map[string]string{"PORT": "70000"}, "PORT out of range"},
		{"bad storage", map[string]string{"STORAGE_TYPE": "mongo"}, "invalid STORAGE_TYPE"},
		{"redis url", map[string]string{"STORAGE_TYPE": "redis"}, "REDIS_URL required"},
		{"database url", map[string]string{"STORAGE_TYPE": "postgres"}, "DATABASE_URL required"},
		{"bad duration", map[string]string{"RATES_TTL": "soon"}, "invalid RATES_TTL"},
		{"bad bool", map[string]string{"SCHEDULER_ENABLED": "maybe"}, "invalid SCHEDULER_ENABLED"},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}, "invalid LOG_LEVEL"},
		{"negative delay", map[string]string{"CATALOG_DELAY": "-1s"}, "CATALOG_DELAY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SEED_PATH=/tmp/seed.json\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("SEED_PATH", "")
	require.NoError(t, os.Unsetenv("SEED_PATH"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/seed.json", cfg.SeedPath)
}
