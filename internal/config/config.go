// Package config loads the server configuration from a YAML file,
// environment variables and defaults, in that order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/cvd-risk-server/internal/domain"
)

// Manager loads and validates the application configuration using Viper.
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// Set configuration file name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/cvd-risk-server/")

	// Set environment variable prefix and enable automatic env binding
	viper.SetEnvPrefix("CVD_RISK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars suffice in lite mode.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.mode", "lite")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.request_timeout", "30s")
	viper.SetDefault("server.rate_limit_per_sec", 20)
	viper.SetDefault("server.rate_limit_burst", 40)

	// Database defaults (full mode)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "cvd_risk")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_conns", 25)
	viper.SetDefault("database.min_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.conn_max_idle_time", "30m")
	viper.SetDefault("database.migrations_path", "migrations")

	// Session defaults
	viper.SetDefault("sessions.backend", "memory")
	viper.SetDefault("sessions.ttl", "1h")
	viper.SetDefault("sessions.max_items", 1024)
	viper.SetDefault("sessions.redis_url", "redis://localhost:6379")

	// Audit log defaults
	viper.SetDefault("audit_log.driver", "sqlite")
	viper.SetDefault("audit_log.sqlite_path", "data/audit.db")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Mode != domain.ModeFull && config.Server.Mode != domain.ModeLite {
		return fmt.Errorf("invalid server mode: %q", config.Server.Mode)
	}
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RateLimitPerSec <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}

	// Full mode needs a reachable Postgres.
	if config.Server.Mode == domain.ModeFull {
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if config.Database.Username == "" {
			return fmt.Errorf("database username is required")
		}
	}

	switch config.Sessions.Backend {
	case "memory":
		if config.Sessions.MaxItems <= 0 {
			return fmt.Errorf("session max_items must be positive")
		}
	case "redis":
		if config.Sessions.RedisURL == "" {
			return fmt.Errorf("session redis_url is required")
		}
	default:
		return fmt.Errorf("invalid session backend: %q", config.Sessions.Backend)
	}

	switch config.AuditLog.Driver {
	case "sqlite":
		if config.AuditLog.SQLitePath == "" {
			return fmt.Errorf("audit log sqlite_path is required")
		}
	case "postgres":
	default:
		return fmt.Errorf("invalid audit log driver: %q", config.AuditLog.Driver)
	}

	if config.Sessions.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	return nil
}
