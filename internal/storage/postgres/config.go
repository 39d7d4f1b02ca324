package postgres

import "time"

// Config holds PostgreSQL connection settings
type Config struct {
	// DSN is a libpq connection string or postgres:// URL
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// ConnectTimeout bounds the initial ping
	ConnectTimeout time.Duration

	// AutoMigrate creates or updates tables on startup
	AutoMigrate bool
}

// DefaultConfig returns sensible defaults for PostgreSQL configuration
func DefaultConfig() Config {
	return Config{
		DSN:             "postgres://localhost:5432/spendboard?sslmode=disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		ConnectTimeout:  5 * time.Second,
		AutoMigrate:     true,
	}
}
