package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/enrolld/enrolld/internal/application/registrar"
	"github.com/enrolld/enrolld/pkg/ports"
)

// Server represents the HTTP API server
type Server struct {
	router  *gin.Engine
	server  *http.Server
	manager *registrar.Manager
	journal ports.Journal
	logger  *zap.Logger
}

// Config holds HTTP server configuration
type Config struct {
	Port    int
	Manager *registrar.Manager
	Journal ports.Journal
	Metrics ports.MetricsCollector
	Logger  *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestLogger(cfg.Logger, cfg.Metrics))

	s := &Server{
		router:  router,
		manager: cfg.Manager,
		journal: cfg.Journal,
		logger:  cfg.Logger,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// Metrics
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// Participant endpoints
		v1.POST("/participants", s.handleCreateParticipant)
		v1.GET("/participants", s.handleListParticipants)
		v1.GET("/participants/:id", s.handleGetParticipant)

		// Activity endpoints
		v1.POST("/activities", s.handleCreateActivity)
		v1.GET("/activities", s.handleListActivities)
		v1.GET("/activities/:title", s.handleGetActivity)
		v1.GET("/activities/:title/prerequisites", s.handleListPrerequisites)

		// Registration endpoints
		v1.POST("/activities/:title/registrations", s.handleRegister)
		v1.DELETE("/activities/:title/registrations/:id", s.handleDeregister)

		// Prerequisite and schedule endpoints
		v1.POST("/prerequisites", s.handleAddPrerequisite)
		v1.GET("/schedule", s.handleGetSchedule)

		// Undo and event inspection
		v1.POST("/undo", s.handleUndo)
		v1.GET("/events", s.handleRecentEvents)
	}
}

// SetupWebSocket registers the event stream endpoint.
func (s *Server) SetupWebSocket(handler gin.HandlerFunc) {
	s.router.GET("/ws/events", handler)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}

// requestLogger logs each request and feeds the duration histogram. The
// metrics label uses the route template, not the raw path, to keep
// cardinality bounded.
func requestLogger(logger *zap.Logger, metrics ports.MetricsCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		if metrics != nil {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			metrics.ObserveHTTPRequest(c.Request.Method, route, status, duration)
		}

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()))
	}
}
