// Package http provides the HTTP API for advisord.
package http

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/advisord/internal/agent"
	"github.com/fyrsmithlabs/advisord/internal/logging"
	"github.com/fyrsmithlabs/advisord/internal/memory"
	"github.com/fyrsmithlabs/advisord/internal/orchestrator"
)

// Server exposes the pipeline over HTTP.
type Server struct {
	echo   *echo.Echo
	pipe   *orchestrator.Orchestrator
	memory *memory.Memory
	logger *logging.Logger
	config *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates the HTTP server.
func NewServer(pipe *orchestrator.Orchestrator, mem *memory.Memory, logger *logging.Logger, cfg *Config) (*Server, error) {
	if pipe == nil {
		return nil, fmt.Errorf("orchestrator cannot be nil")
	}
	if mem == nil {
		return nil, fmt.Errorf("memory cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8086,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info(c.Request().Context(), "http request",
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
		echo:   e,
		pipe:   pipe,
		memory: mem,
		logger: logger,
		config: cfg,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/analyze", s.handleAnalyze)
	v1.POST("/analyze/quick", s.handleAnalyzeQuick)
	v1.POST("/route", s.handleRoute)
	v1.GET("/memory/:user", s.handleMemory)
}

// AnalyzeRequest is the request body for the analyze endpoints.
type AnalyzeRequest struct {
	UserID      string `json:"user_id"`
	Platform    string `json:"platform"`
	Text        string `json:"text,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
}

// RouteRequest is the request body for POST /api/v1/route.
type RouteRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleAnalyze(c echo.Context) error {
	req, err := s.bindAnalyze(c)
	if err != nil {
		return err
	}

	resp, err := s.pipe.RunFull(c.Request().Context(), req)
	if err != nil {
		return s.pipelineError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleAnalyzeQuick(c echo.Context) error {
	req, err := s.bindAnalyze(c)
	if err != nil {
		return err
	}

	resp, err := s.pipe.RunQuick(c.Request().Context(), req)
	if err != nil {
		return s.pipelineError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRoute(c echo.Context) error {
	var body RouteRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if body.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text field is required")
	}

	out, err := s.pipe.Route(c.Request().Context(), body.UserID, body.Text)
	if err != nil {
		return s.pipelineError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleMemory(c echo.Context) error {
	userID := c.Param("user")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user is required")
	}
	return c.JSON(http.StatusOK, s.memory.UserPatterns(c.Request().Context(), userID))
}

func (s *Server) bindAnalyze(c echo.Context) (*agent.Request, error) {
	var body AnalyzeRequest
	if err := c.Bind(&body); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid analyze request", zap.Error(err))
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if body.UserID == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "user_id field is required")
	}

	req := agent.NewRequest(body.UserID, agent.ParsePlatform(body.Platform))
	req.Text = body.Text
	req.SourceURL = body.SourceURL

	if body.ImageBase64 != "" {
		image, err := decodeImage(body.ImageBase64)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "image_base64 is not valid base64")
		}
		req.Image = image
	}
	return req, nil
}

// decodeImage accepts raw base64 or a data URL.
func decodeImage(encoded string) ([]byte, error) {
	if idx := strings.Index(encoded, "base64,"); idx >= 0 {
		encoded = encoded[idx+len("base64,"):]
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func (s *Server) pipelineError(c echo.Context, err error) error {
	if errors.Is(err, orchestrator.ErrMissingUserID) {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id field is required")
	}
	s.logger.Error(c.Request().Context(), "pipeline failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "analysis failed")
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
