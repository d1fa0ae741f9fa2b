// Package web exposes the competition service as a JSON API over chi.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/athletix/internal/config"
	"github.com/JonMunkholm/athletix/internal/core"
	mw "github.com/JonMunkholm/athletix/internal/web/middleware"
)

// Server is the HTTP host of the competition service.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	defaults core.ImportDefaults
	router   *chi.Mux
	server   *http.Server

	// stop ends the rate limiter cleanup goroutines.
	stop context.CancelFunc
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, defaults core.ImportDefaults) *Server {
	ctx, stop := context.WithCancel(context.Background())
	s := &Server{
		service:  service,
		cfg:      cfg,
		defaults: defaults,
		router:   chi.NewRouter(),
		stop:     stop,
	}
	s.setupMiddleware()
	s.setupRoutes(ctx)
	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes. ctx bounds the rate limiters.
func (s *Server) setupRoutes(ctx context.Context) {
	general := func(next http.Handler) http.Handler { return next }
	imports := general
	if s.cfg.Rate.Enabled {
		general = newRateLimiter(ctx, s.cfg.Rate.RequestsPerMinute, time.Minute).middleware
		imports = newRateLimiter(ctx, s.cfg.Rate.ImportLimit, time.Minute).middleware
	}

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(general)

		r.Get("/import-queue", s.handleImportQueueStatus)

		r.Post("/competitions", s.handleCreateCompetition)
		r.Route("/competitions/{competitionID}", func(r chi.Router) {
			r.Get("/", s.handleGetCompetition)
			r.Get("/events", s.handleListEvents)
			r.Post("/events", s.handleCreateEvent)

			r.With(imports).Post("/startlist", s.handleImportStartlist)
			r.With(imports).Post("/results/import", s.handleImportResults)

			r.Post("/schedules", s.handleGenerateSchedule)
			r.Get("/schedules/latest", s.handleLatestSchedule)
		})

		r.Get("/schedules/{scheduleID}", s.handleGetSchedule)
		r.Post("/schedules/{scheduleID}/publish", s.handlePublishSchedule)
		r.Post("/schedules/{scheduleID}/items/{itemID}/start", s.handleRecordActualStart)

		r.Get("/events/{eventID}/registrations", s.handleListRegistrations)
		r.Get("/events/{eventID}/results", s.handleEventResults)
		r.Post("/events/{eventID}/rank", s.handleRankEvent)
		r.Post("/events/{eventID}/relay-teams", s.handleCreateRelayTeam)

		r.Get("/relay-teams/{teamID}", s.handleGetRelayTeam)
		r.Post("/relay-teams/{teamID}/members", s.handleAssignRelayMember)
		r.Delete("/relay-teams/{teamID}/members/{position}", s.handleReleaseRelayMember)

		r.Post("/results", s.handleSubmitResult)
		r.Post("/results/batch", s.handleSubmitResults)

		r.Get("/athletes/{athleteID}", s.handleGetAthlete)
	})
}

// Start begins listening for HTTP requests. It returns http.ErrServerClosed
// after Shutdown, even when Shutdown came first.
func (s *Server) Start() error {
	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
