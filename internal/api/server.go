package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/realestate-detective-backend/internal/api/handlers"
	"github.com/eshaffer321/realestate-detective-backend/internal/api/middleware"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/matcher"
	"github.com/eshaffer321/realestate-detective-backend/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	Matching       matcher.Config // reported by /api/property-types
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		Matching:       matcher.DefaultConfig(),
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	engine     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.RegionRepository
	search     handlers.Searcher
}

// NewServer creates a new API server.
// If search is nil, the search endpoints will not be available.
func NewServer(cfg Config, repo storage.RegionRepository, search handlers.Searcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		engine: gin.New(),
		logger: logger,
		repo:   repo,
		search: search,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.engine.Use(gin.Recovery())

	s.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: s.config.AllowedOrigins,
	}))

	// Request logging
	s.engine.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	s.engine.GET("/health", handlers.NewHealthHandler().Get)

	r := s.engine.Group("/api")

	if s.search != nil {
		searchHandler := handlers.NewSearchHandler(s.search, s.logger)
		r.POST("/search", searchHandler.Search)
		r.POST("/search/range", searchHandler.SearchRange)
	}

	if s.repo != nil {
		regionsHandler := handlers.NewRegionsHandler(s.repo, s.logger)
		r.GET("/regions", regionsHandler.List)
		r.GET("/regions/:code", regionsHandler.Get)
	}

	r.GET("/property-types", handlers.NewPropertyTypesHandler(s.config.Matching).List)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute, // range searches fan out over many batches
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the HTTP handler for testing.
func (s *Server) Router() http.Handler {
	return s.engine
}
