// Package server provides the HTTP API for Chishiki.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hyperjump/chishiki/internal/analytics"
	"github.com/hyperjump/chishiki/internal/config"
	"github.com/hyperjump/chishiki/internal/search"
)

// Server is the HTTP server for the Chishiki API.
type Server struct {
	engine   *search.Engine
	tracker  *analytics.Tracker
	config   *config.ServerConfig
	logger   *zap.Logger
	validate *validator.Validate
	server   *http.Server

	// retrieval defaults are swapped atomically by config hot reload.
	mu        sync.RWMutex
	retrieval config.RetrievalConfig
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	tracker *analytics.Tracker,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:    engine,
		tracker:   tracker,
		config:    &cfg.Server,
		logger:    logger,
		validate:  validator.New(),
		retrieval: cfg.Retrieval,
	}
}

// UpdateRetrievalDefaults swaps the retrieval defaults applied to requests
// that leave options unset. Called by the config watcher on reload.
func (s *Server) UpdateRetrievalDefaults(rc config.RetrievalConfig) {
	s.mu.Lock()
	s.retrieval = rc
	s.mu.Unlock()
}

func (s *Server) retrievalDefaults() config.RetrievalConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retrieval
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/retrieve", s.handleRetrieve)
	r.Post("/api/v1/search/semantic", s.handleSemanticSearch)
	r.Post("/api/v1/search/hybrid", s.handleHybridSearch)
	r.Get("/api/v1/analytics/usage", s.handleUsageAnalytics)
	r.Get("/api/v1/analytics/documents/top", s.handleTopDocuments)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
