package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/cvd-risk-server/internal/api"
	"github.com/cvd-risk-server/internal/auditlog"
	"github.com/cvd-risk-server/internal/config"
	"github.com/cvd-risk-server/internal/database"
	"github.com/cvd-risk-server/internal/domain"
	"github.com/cvd-risk-server/internal/repository"
	"github.com/cvd-risk-server/internal/service"
	"github.com/cvd-risk-server/internal/session"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"mode": cfg.Server.Mode,
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting CVD risk server")

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions, err := newSessionStore(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	defer sessions.Close()

	audit, err := newAuditStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open audit log: %v", err)
	}
	defer audit.Close()

	var profiles domain.ProfileRepository
	if cfg.Server.Mode == domain.ModeFull {
		db, err := database.NewConnection(ctx, cfg.Database, logger)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := runMigrations(cfg.Database, logger); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		profiles = repository.NewProfileRepository(db.Pool, logger)
	} else {
		logger.Info("Running in lite mode with the built-in profile table")
	}

	server := api.NewServer(cfg, logger, service.NewRiskEngine(logger), sessions, audit, profiles)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}

	logger.Info("Server stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func newSessionStore(cfg *domain.Config, logger *logrus.Logger) (session.Store, error) {
	if cfg.Server.Mode == domain.ModeFull && cfg.Sessions.Backend == "redis" {
		return session.NewRedisStore(cfg.Sessions, logger)
	}
	return session.NewMemoryStore(cfg.Sessions, logger), nil
}

func newAuditStore(cfg *domain.Config) (auditlog.Store, error) {
	if cfg.Server.Mode == domain.ModeFull && cfg.AuditLog.Driver == "postgres" {
		return auditlog.NewPostgresStoreFromURL(database.URL(cfg.Database))
	}
	return auditlog.NewSQLiteStore(cfg.AuditLog.SQLitePath)
}

func runMigrations(cfg domain.DatabaseConfig, logger *logrus.Logger) error {
	runner, err := database.NewMigrationRunner(cfg, logger)
	if err != nil {
		return err
	}
	defer runner.Close()
	return runner.Up()
}
