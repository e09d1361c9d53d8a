// Package server provides the HTTP API for the finance assistant.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/smarimus/ai-finance-assistant/internal/agents"
	"github.com/smarimus/ai-finance-assistant/internal/config"
	"github.com/smarimus/ai-finance-assistant/internal/indexer"
	"github.com/smarimus/ai-finance-assistant/internal/knowledge"
	"github.com/smarimus/ai-finance-assistant/internal/market"
	"github.com/smarimus/ai-finance-assistant/internal/watcher"
)

// Server is the HTTP server for the assistant API.
type Server struct {
	assistant *agents.Assistant
	indexer   *indexer.Indexer
	index     *knowledge.Index
	market    *market.Client
	cfg       *config.Config
	logger    *zap.Logger
	server    *http.Server

	// watch is optional; nil disables the watch management endpoints.
	watch      *watcher.Watcher
	configPath string
	configMu   sync.Mutex
}

// NewServer creates a server with the given dependencies.
func NewServer(
	assistant *agents.Assistant,
	idx *indexer.Indexer,
	index *knowledge.Index,
	marketClient *market.Client,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		assistant: assistant,
		indexer:   idx,
		index:     index,
		market:    marketClient,
		cfg:       cfg,
		logger:    logger,
	}
}

// EnableWatch exposes the watch management endpoints. configPath, when
// non-empty, is where directory changes are persisted.
func (s *Server) EnableWatch(w *watcher.Watcher, configPath string) {
	s.watch = w
	s.configPath = configPath
}

// Routes builds the chi router. Split out from Start so tests can exercise
// the handlers with httptest.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/query", s.handleQuery)
	r.Get("/api/v1/quote/{symbol}", s.handleQuote)
	r.Get("/api/v1/market/overview", s.handleOverview)
	r.Post("/api/v1/documents", s.handleIndexDocument)
	r.Get("/api/v1/documents/{id}", s.handleGetDocument)
	r.Delete("/api/v1/documents/{id}", s.handleDeleteDocument)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/api/v1/watch/directories", s.handleWatchList)
	r.Post("/api/v1/watch/directories", s.handleWatchAdd)
	r.Delete("/api/v1/watch/directories", s.handleWatchRemove)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
