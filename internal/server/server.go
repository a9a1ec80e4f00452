// Package server exposes the reports and the activity feed over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goodsign/monday"
	"github.com/rs/zerolog"

	"github.com/sadopc/pmreport/internal/api"
	pmmiddleware "github.com/sadopc/pmreport/internal/server/middleware"
	"github.com/sadopc/pmreport/internal/snapshot"
)

const defaultShutdownTimeout = 10 * time.Second

// SnapshotLoader builds a snapshot for a date range.
type SnapshotLoader interface {
	Load(ctx context.Context, r snapshot.DateRange) snapshot.Snapshot
}

// ActivitySource reads the activity feed.
type ActivitySource interface {
	ListActivities(ctx context.Context, q api.ActivityQuery) ([]api.Activity, error)
}

type Dependencies struct {
	Loader     SnapshotLoader
	Activities ActivitySource
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Locale          monday.Locale
	ActivityLimit   int
	Now             func() time.Time
	Dependencies    Dependencies
}

type WebAPI struct {
	router  *chi.Mux
	logger  *zerolog.Logger
	server  *http.Server
	timeout time.Duration
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	h := newHandler(config)

	router := chi.NewRouter()

	router.Use(pmmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/health", h.Health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/reports/{type}", h.GetReport)
		r.Get("/reports/{type}/export.csv", h.ExportReport)
		r.Get("/reports/{type}/export.json", h.ExportReport)
		r.Get("/activity", h.ListActivity)
	})
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "not found")
	})

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router:  router,
		logger:  &logger,
		timeout: timeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the router, for tests and embedding.
func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()

		err := w.server.Shutdown(shutdownCtx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
