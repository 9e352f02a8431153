// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the crawl operations as a JSON API under
// /api/crawler.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/paper-crawler/internal/pipeline"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

const (
	defaultMaxResults           = 10
	defaultMaxResultsPerKeyword = 5
	maxRequestBytes             = 1 << 20
	shutdownTimeout             = 10 * time.Second
)

// Crawler is the set of pipeline operations the API serves.
type Crawler interface {
	Crawl(ctx context.Context, query types.Query) (pipeline.Result, error)
	CrawlAndPersist(ctx context.Context, query types.Query) (pipeline.Result, error)
	CrawlBatch(ctx context.Context, batch types.BatchQuery) (pipeline.BatchResult, error)
	CrawlBatchAndPersist(ctx context.Context, batch types.BatchQuery) (pipeline.BatchResult, error)
	PersistSelected(ctx context.Context, papers []types.Paper) ([]types.Paper, error)
	Health(ctx context.Context) map[string]error
}

// Server routes API requests to a Crawler.
type Server struct {
	crawler Crawler
	logger  *slog.Logger
	router  chi.Router
}

// New returns a Server for crawler. A nil logger uses slog.Default().
func New(crawler Crawler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{crawler: crawler, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(allowAnyOrigin)

	r.Route("/api/crawler", func(r chi.Router) {
		r.Post("/crawl", s.handleCrawl)
		r.Post("/crawl-and-save", s.handleCrawlAndSave)
		r.Post("/crawl-batch", s.handleCrawlBatch)
		r.Post("/crawl-batch-and-save", s.handleCrawlBatchAndSave)
		r.Post("/save-selected", s.handleSaveSelected)
		r.Get("/health", s.handleHealth)
	})
	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("api shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
