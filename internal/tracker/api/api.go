// Package api serves the tracker's read-only JSON API.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/deadlock-tools/tracker/internal/platform/errors"
	"github.com/deadlock-tools/tracker/internal/platform/httpx"
	"github.com/deadlock-tools/tracker/internal/platform/timeouts"
	"github.com/deadlock-tools/tracker/internal/tracker/observability"
	"github.com/deadlock-tools/tracker/internal/tracker/storage"
)

// Server exposes tracker storage over HTTP.
type Server struct {
	store  storage.Store
	logger *log.Logger
}

// NewServer builds an API server over the given store.
func NewServer(store storage.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{store: store, logger: logger}
}

// Handler builds the routed HTTP handler with the standard middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/matches", s.instrument("matches", s.handleListMatches))
	mux.HandleFunc("GET /api/matches/stats", s.instrument("match_stats", s.handleMatchStats))
	mux.HandleFunc("GET /api/matches/{id}", s.instrument("match", s.handleGetMatch))
	mux.HandleFunc("GET /api/matches/{id}/players", s.instrument("match_players", s.handleMatchPlayers(false)))
	mux.HandleFunc("GET /api/matches/{id}/notable-players", s.instrument("match_notable_players", s.handleMatchPlayers(true)))
	mux.HandleFunc("GET /api/matches/{id}/events", s.instrument("match_events", s.handleMatchEvents))

	mux.HandleFunc("GET /api/heroes", s.instrument("heroes", s.handleListHeroes))
	mux.HandleFunc("GET /api/heroes/{id}", s.instrument("hero", s.handleGetHero))
	mux.HandleFunc("GET /api/items", s.instrument("items", s.handleListItems))
	mux.HandleFunc("GET /api/items/{id}", s.instrument("item", s.handleGetItem))
	mux.HandleFunc("GET /api/players", s.instrument("players", s.handleListPlayers))
	mux.HandleFunc("GET /api/players/{id}", s.instrument("player", s.handleGetPlayer))
	mux.HandleFunc("GET /api/players/{id}/matches", s.instrument("player_matches", s.handlePlayerMatches))

	return httpx.Chain(mux, httpx.RequestID(), httpx.Trace("tracker-api"), httpx.RecoverPanic())
}

// instrument records the request duration under the route label.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next(w, r)
		observability.APIRequestDuration.WithLabelValues(route).Observe(time.Since(started).Seconds())
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Serve runs the HTTP server until the context is cancelled, then shuts
// down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logger.Printf("listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
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

// storeErr converts storage sentinel errors into domain errors so the
// HTTP status mapping applies.
func storeErr(err error, resource string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.New(apperrors.CodeNotFound, resource+" not found")
	}
	return err
}
