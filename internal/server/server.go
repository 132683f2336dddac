package server

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/retrieval"
	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

// Config holds HTTP server configuration.
type Config struct {
	Host           string
	Port           int
	MaxUploadBytes int64
	TopK           int
	Thresholds     retrieval.Thresholds
}

// Server provides HTTP endpoints for ragd.
type Server struct {
	echo        *echo.Echo
	docs        DocumentStore
	files       BlobStore
	ingestor    Ingestor
	vectors     vectorstore.Store
	synthesizer Synthesizer
	logger      *zap.Logger
	config      *Config
}

// NewServer creates a new HTTP server.
func NewServer(docs DocumentStore, files BlobStore, ingestor Ingestor, vectors vectorstore.Store, synthesizer Synthesizer, logger *zap.Logger, cfg *Config) (*Server, error) {
	if docs == nil || files == nil || ingestor == nil || vectors == nil || synthesizer == nil {
		return nil, fmt.Errorf("all dependencies are required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 100 * 1024 * 1024
	}
	if cfg.TopK == 0 {
		cfg.TopK = 5
	}
	if cfg.Thresholds == (retrieval.Thresholds{}) {
		cfg.Thresholds = retrieval.DefaultThresholds()
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
		echo:        e,
		docs:        docs,
		files:       files,
		ingestor:    ingestor,
		vectors:     vectors,
		synthesizer: synthesizer,
		logger:      logger,
		config:      cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/documents/upload", s.handleUpload)
	v1.GET("/documents", s.handleListDocuments)
	v1.GET("/documents/:id", s.handleGetDocument)
	v1.DELETE("/documents/:id", s.handleDeleteDocument)
	v1.POST("/query", s.handleQuery)
	v1.GET("/stats", s.handleStats)
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
