// Package server provides the HTTP API for cortexd.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/cortexd/internal/brain"
	"github.com/fyrsmithlabs/cortexd/internal/feedback"
	"github.com/fyrsmithlabs/cortexd/internal/knowledge"
	"github.com/fyrsmithlabs/cortexd/internal/learning"
	"github.com/fyrsmithlabs/cortexd/internal/orchestrator"
	"github.com/fyrsmithlabs/cortexd/internal/reliability"
	"github.com/fyrsmithlabs/cortexd/internal/telemetry"
)

// Server provides HTTP endpoints for cortexd.
type Server struct {
	echo         *echo.Echo
	orchestrator *orchestrator.Orchestrator
	feedback     *feedback.Service
	tracker      *reliability.Tracker
	knowledge    knowledge.Store
	metrics      *telemetry.Metrics
	logger       *zap.Logger
	config       *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server.
func NewServer(
	orch *orchestrator.Orchestrator,
	fb *feedback.Service,
	tracker *reliability.Tracker,
	store knowledge.Store,
	metrics *telemetry.Metrics,
	logger *zap.Logger,
	cfg *Config,
) (*Server, error) {
	if orch == nil {
		return nil, fmt.Errorf("orchestrator cannot be nil")
	}
	if fb == nil {
		return nil, fmt.Errorf("feedback service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 9270,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:         e,
		orchestrator: orch,
		feedback:     fb,
		tracker:      tracker,
		knowledge:    store,
		metrics:      metrics,
		logger:       logger,
		config:       cfg,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check
	s.echo.GET("/health", s.handleHealth)

	// Prometheus metrics
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(
			promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	v1.POST("/decide", s.handleDecide)
	v1.POST("/feedback", s.handleFeedback)
	v1.GET("/reliability", s.handleReliability)
	v1.POST("/knowledge/match", s.handleKnowledgeMatch)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReliabilityResponse is the response body for GET /api/v1/reliability.
type ReliabilityResponse struct {
	Multipliers map[string]float64 `json:"multipliers"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleDecide runs one request through the decision pipeline. Degraded
// pipelines still return 200 with a minimal decision; the only client
// error is an empty request.
func (s *Server) handleDecide(c echo.Context) error {
	var req brain.Request
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid decide request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text field is required")
	}

	decision := s.orchestrator.Decide(c.Request().Context(), &req)
	return c.JSON(http.StatusOK, decision)
}

// handleFeedback accepts execution feedback for a prior decision.
func (s *Server) handleFeedback(c echo.Context) error {
	var fb learning.ExecutionFeedback
	if err := c.Bind(&fb); err != nil {
		s.logger.Warn("invalid feedback request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if fb.RequestID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "request_id field is required")
	}

	summary, err := s.feedback.Submit(c.Request().Context(), &fb)
	if err != nil {
		if errors.Is(err, feedback.ErrRequestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		s.logger.Error("feedback processing failed",
			zap.String("request_id", fb.RequestID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "feedback processing failed")
	}
	return c.JSON(http.StatusOK, summary)
}

// handleReliability exposes the current reliability multipliers for
// operator inspection.
func (s *Server) handleReliability(c echo.Context) error {
	if s.tracker == nil {
		return echo.NewHTTPError(http.StatusNotFound, "reliability tracking not enabled")
	}
	snapshot, err := s.tracker.Snapshot(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read reliability state")
	}
	return c.JSON(http.StatusOK, ReliabilityResponse{Multipliers: snapshot})
}

// handleKnowledgeMatch looks up shareable knowledge for a type and set of
// contexts, in ranked order.
func (s *Server) handleKnowledgeMatch(c echo.Context) error {
	if s.knowledge == nil {
		return echo.NewHTTPError(http.StatusNotFound, "knowledge store not enabled")
	}

	var req knowledge.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Type == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "type field is required")
	}

	items, err := s.knowledge.Match(c.Request().Context(), &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "knowledge lookup failed")
	}
	if items == nil {
		items = []*knowledge.Item{}
	}
	return c.JSON(http.StatusOK, items)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
