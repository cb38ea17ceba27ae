// Package server provides the HTTP API for Keiyaku.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/keiyaku/internal/audit"
	"github.com/hyperjump/keiyaku/internal/config"
	"github.com/hyperjump/keiyaku/internal/extraction"
	"github.com/hyperjump/keiyaku/internal/ingest"
	"github.com/hyperjump/keiyaku/internal/metrics"
	"github.com/hyperjump/keiyaku/internal/retrieval"
	"github.com/hyperjump/keiyaku/internal/storage"
	"github.com/hyperjump/keiyaku/internal/vector"
)

// Server is the HTTP server for the Keiyaku API.
type Server struct {
	ingestor    *ingest.Ingestor
	answerer    *retrieval.Answerer
	extractor   *extraction.Service
	auditor     *audit.Engine
	storage     storage.Storage
	vectorIndex vector.Index
	counters    *metrics.Counters
	config      *config.Config
	logger      *zap.Logger
	server      *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	ingestor *ingest.Ingestor,
	answerer *retrieval.Answerer,
	extractor *extraction.Service,
	auditor *audit.Engine,
	store storage.Storage,
	vectorIndex vector.Index,
	counters *metrics.Counters,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		ingestor:    ingestor,
		answerer:    answerer,
		extractor:   extractor,
		auditor:     auditor,
		storage:     store,
		vectorIndex: vectorIndex,
		counters:    counters,
		config:      cfg,
		logger:      logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/documents", s.handleUpload)
		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Delete("/documents/{id}", s.handleDeleteDocument)
		r.Post("/documents/{id}/audit", s.handleAudit)
		r.Get("/documents/{id}/findings", s.handleGetFindings)
		r.Post("/documents/{id}/extract", s.handleExtract)
		r.Get("/documents/{id}/extraction", s.handleGetExtraction)
		r.Post("/ask", s.handleAsk)
		r.Get("/findings/export", s.handleExportFindings)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
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
