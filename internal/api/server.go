// Package api exposes the risk scoring engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cvd-risk-server/internal/auditlog"
	"github.com/cvd-risk-server/internal/domain"
	"github.com/cvd-risk-server/internal/middleware"
	"github.com/cvd-risk-server/internal/report"
	"github.com/cvd-risk-server/internal/service"
	"github.com/cvd-risk-server/internal/session"
)

// Version is the reported server version.
const Version = "1.2.0"

// Server represents the HTTP server
type Server struct {
	config   *domain.Config
	logger   *logrus.Logger
	engine   *service.RiskEngine
	sessions session.Store
	audit    auditlog.Store
	profiles domain.ProfileRepository
	reports  *report.Builder
	router   *gin.Engine
	server   *http.Server
}

// NewServer creates a new HTTP server instance. In lite mode profiles is
// nil; profile lookups then fall back to the built-in table and profile
// writes are refused.
func NewServer(
	config *domain.Config,
	logger *logrus.Logger,
	engine *service.RiskEngine,
	sessions session.Store,
	audit auditlog.Store,
	profiles domain.ProfileRepository,
) *Server {
	// Set Gin mode based on environment
	if config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger())
	router.Use(middleware.RequestTimeout(config.Server.RequestTimeout))
	router.Use(middleware.RateLimit(config.Server.RateLimitPerSec, config.Server.RateLimitBurst))

	server := &Server{
		config:   config,
		logger:   logger,
		engine:   engine,
		sessions: sessions,
		audit:    audit,
		profiles: profiles,
		reports:  report.NewBuilder(),
		router:   router,
	}

	server.setupRoutes()
	return server
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{
			"addr": addr,
			"mode": cfg.Mode,
		}).Info("HTTP server listening")

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/calculate/:method", s.handleCalculate)

		v1.GET("/profiles", s.handleListProfiles)
		v1.POST("/profiles", s.handleCreateProfile)
		v1.GET("/profiles/:name", s.handleGetProfile)
		v1.DELETE("/profiles/:id", s.handleDeleteProfile)
		v1.GET("/profiles/:name/history", s.handleProfileHistory)
		v1.POST("/profiles/:name/measurements", s.handleAddMeasurement)

		v1.GET("/reports/:session_id", s.handleGetReport)
		v1.GET("/audit", s.handleListAudit)
		v1.GET("/audit/export", s.handleExportAudit)
		v1.GET("/audit/sessions/:session_id", s.handleGetAuditEntry)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"mode":      s.config.Server.Mode,
		"timestamp": time.Now().UTC(),
		"version":   Version,
	})
}
