// Package server exposes the timer engine to the UI layer over a local
// HTTP API: read accessors for the session status and preset collection,
// and POSTs for every engine operation. The resync endpoint is the
// transport for the host's "visibility resumed" signal.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/pacer/internal/engine"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	engine *engine.Engine
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a Server with all routes configured. An empty apiKey leaves
// the preset authoring routes unauthenticated (local development).
func New(eng *engine.Engine, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		engine: eng,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Session reads and operations
	s.router.Route("/api/v1/timer", func(r chi.Router) {
		r.Get("/", s.handleStatus)
		r.Post("/start", s.handleStart)
		r.Post("/pause", s.handlePause)
		r.Post("/reset", s.handleReset)
		r.Post("/resync", s.handleResync)
		r.Post("/mute", s.handleToggleMute)
		r.Post("/keepawake", s.handleToggleKeepAwake)
		r.Post("/wakelock-revoked", s.handleWakeLockRevoked)
		r.Post("/select/{id}", s.handleSelectPreset)
	})

	// Preset reads and authoring (authoring takes an API key when configured)
	s.router.Route("/api/v1/presets", func(r chi.Router) {
		r.Get("/", s.handleListPresets)
		r.Group(func(r chi.Router) {
			if s.apiKey != "" {
				r.Use(APIKeyAuth(s.apiKey))
			}
			r.Post("/", s.handleCreatePreset)
			r.Put("/{id}", s.handleUpdatePreset)
			r.Delete("/{id}", s.handleDeletePreset)
		})
	})
}
