package domain

import (
	"time"
)

// Mode selects how much infrastructure the server attaches to.
type Mode string

const (
	// ModeFull uses PostgreSQL for profile storage and (optionally) Redis
	// for result sessions.
	ModeFull Mode = "full"
	// ModeLite runs without external services: the built-in profile table,
	// in-memory sessions and a SQLite audit log.
	ModeLite Mode = "lite"
)

// Config is the main application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Sessions SessionConfig  `mapstructure:"sessions"`
	AuditLog AuditLogConfig `mapstructure:"audit_log"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig is the HTTP server configuration.
type ServerConfig struct {
	Mode            Mode          `mapstructure:"mode"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	RateLimitPerSec float64       `mapstructure:"rate_limit_per_sec"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

// DatabaseConfig is the PostgreSQL connection configuration (full mode).
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// SessionConfig configures the calculation result session store.
type SessionConfig struct {
	// Backend is "memory" or "redis".
	Backend  string        `mapstructure:"backend"`
	TTL      time.Duration `mapstructure:"ttl"`
	MaxItems int           `mapstructure:"max_items"`
	RedisURL string        `mapstructure:"redis_url"`
}

// AuditLogConfig configures calculation audit logging.
type AuditLogConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
