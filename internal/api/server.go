// Package api serves boards and user board state over HTTP.
//
// Routes mirror the delivery web app's backend: saved positions, PI state
// and the confidence index under /api/positions, /api/pi-state and
// /api/confidence, JIRA passthrough under /api/jira and /api/mep when a
// client is configured, plus layout and rendering endpoints built on the
// pipeline.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/buildinfo"
	"github.com/matzehuels/roadmap/pkg/jira"
	"github.com/matzehuels/roadmap/pkg/pipeline"
	"github.com/matzehuels/roadmap/pkg/store"
)

// Server limits.
const (
	DefaultAddr     = ":3002"
	maxBodyBytes    = 4 << 20
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Store    store.Store
	Runner   *pipeline.Runner
	Logger   *log.Logger
	Calendar board.CalendarOptions

	// JIRA is optional; without it the /api/jira, /api/mep and
	// /api/boards routes answer 503.
	JIRA *jira.Client

	// Defaults applied to layout and board requests.
	Layout pipeline.Options
}

// New returns a server with a memory store, an uncached runner, and a
// discarding logger when those are nil.
func New(s store.Store, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if s == nil {
		s = store.NewMemoryStore()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	return &Server{Store: s, Runner: runner, Logger: logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.health)
	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/positions", func(r chi.Router) {
			r.Get("/{projectID}/{piID}", s.listPositions)
			r.Post("/", s.savePosition)
			r.Delete("/{projectID}/{piID}/{taskID}", s.deletePosition)
		})

		r.Route("/pi-state/{projectID}/{piID}", func(r chi.Router) {
			r.Get("/", s.getState)
			r.Put("/freeze", s.toggleFreeze)
			r.Post("/freeze", s.toggleFreeze)
			r.Post("/hide", s.hide)
			r.Delete("/hide/{jiraKey}", s.restoreOne)
			r.Post("/restore", s.restoreMany)
		})

		r.Route("/confidence", func(r chi.Router) {
			r.Get("/{projectID}/{piID}", s.getConfidence)
			r.Put("/{projectID}/{piID}/score", s.setConfidenceScore)
			for _, kind := range []store.ItemKind{store.KindQuestion, store.KindImprovement} {
				r.Post("/{projectID}/{piID}/"+string(kind), s.addConfidenceItem(kind))
				r.Put("/"+string(kind)+"/{id}", s.updateConfidenceItem(kind))
				r.Delete("/"+string(kind)+"/{id}", s.deleteConfidenceItem(kind))
			}
		})

		r.Post("/layout", s.layout)
		r.Get("/pis", s.listPIs)
		r.With(s.requireJIRA).Get("/boards/{projectID}/{piID}", s.board)

		r.Route("/jira", func(r chi.Router) {
			r.Use(s.requireJIRA)
			r.Get("/boards", s.jiraBoards)
			r.Get("/sprints/{projectKey}", s.jiraSprints)
			r.Get("/issues/{projectKey}", s.jiraIssues)
		})
		r.Route("/mep/{projectID}", func(r chi.Router) {
			r.Use(s.requireJIRA)
			r.Get("/", s.versions)
			r.Get("/range", s.versionsInRange)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		s.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"version":   buildinfo.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
