// Package api exposes the subtitle pipeline over HTTP: job submission, status
// queries, and artifact download.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"autosub/internal/config"
	"autosub/internal/jobs"
	"autosub/internal/logging"
	"autosub/internal/pipeline"
)

// Server wires the HTTP routes to the job store and worker pool.
type Server struct {
	cfg      *config.Config
	store    *jobs.Store
	pool     *pipeline.Pool
	logger   *slog.Logger
	validate *validator.Validate
	router   chi.Router
	httpSrv  *http.Server
}

// NewServer builds the server and its routes.
func NewServer(cfg *config.Config, store *jobs.Store, pool *pipeline.Pool, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		pool:     pool,
		logger:   logging.NewComponentLogger(logger, "api"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Get("/health", s.handleHealth)
	router.Route("/api", func(r chi.Router) {
		r.Post("/jobs", s.handleCreateJob)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Get("/download/{name}", s.handleDownload)
	})
	s.router = router
	return s
}

// Handler returns the route tree, used directly in tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until the context is canceled, then drains with a
// shutdown grace period.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.APIBind,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()
	if s.logger != nil {
		s.logger.Info("api listening", logging.String("bind", s.cfg.APIBind))
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-errCh:
		return err
	}
}
