// Package api exposes generation over HTTP for the UI clients.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ayane-k/soracast/internal/corpus"
	"github.com/ayane-k/soracast/internal/gazetteer"
	"github.com/ayane-k/soracast/internal/models"
)

// Generator runs the generation pipeline. Implemented by
// *generate.Orchestrator; tests substitute a stub.
type Generator interface {
	Generate(ctx context.Context, loc gazetteer.Location) models.GenerationResult
	GenerateBatch(ctx context.Context, locs []gazetteer.Location, concurrency int, perLocationTimeout time.Duration) []models.GenerationResult
}

// History reads recent generation records.
type History interface {
	RecentGenerations(limit int) ([]corpus.GenerationRecord, error)
}

// Server is the HTTP front of the service.
type Server struct {
	gen              Generator
	history          History
	gaz              *gazetteer.Gazetteer
	log              *zap.Logger
	port             string
	batchConcurrency int
	batchTimeout     time.Duration
}

// Options tune the server beyond its collaborators.
type Options struct {
	Port             string
	BatchConcurrency int
	BatchTimeout     time.Duration
}

// NewServer wires the HTTP server.
func NewServer(gen Generator, history History, gaz *gazetteer.Gazetteer, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Port == "" {
		opts.Port = "8080"
	}
	return &Server{
		gen:              gen,
		history:          history,
		gaz:              gaz,
		log:              log,
		port:             opts.Port,
		batchConcurrency: opts.BatchConcurrency,
		batchTimeout:     opts.BatchTimeout,
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/comments", s.handleGenerate)
		r.Post("/comments/batch", s.handleGenerateBatch)
		r.Get("/locations", s.handleLocations)
		r.Get("/history", s.handleHistory)
	})
	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.log.Info("http server listening", zap.String("port", s.port))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
