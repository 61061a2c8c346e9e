// Package server exposes scoring, progress and the leaderboard over HTTP
// and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/verte-zerg/japa/internal/mantra"
	"github.com/verte-zerg/japa/internal/model"
	"github.com/verte-zerg/japa/internal/scorer"
	"github.com/verte-zerg/japa/internal/session"
)

// Repository is the persistence the server needs. *store.Store satisfies it.
type Repository interface {
	session.Persister
	session.Recorder
	ListProgress(ctx context.Context) ([]model.Progress, error)
	DeleteUser(ctx context.Context, userKey string) (bool, error)
	Ping(ctx context.Context) error
}

// Server holds handler dependencies.
type Server struct {
	repo    Repository
	cfg     model.ServerConfig
	scorers map[mantra.Variant]*scorer.Scorer
	logger  *slog.Logger
}

// New builds a Server, loading one scorer per variant from the configured
// text files or the builtin mantra.
func New(repo Repository, cfg model.ServerConfig, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		repo:    repo,
		cfg:     cfg,
		scorers: make(map[mantra.Variant]*scorer.Scorer),
		logger:  logger,
	}
	for _, v := range mantra.Variants() {
		text, err := mantra.Resolve(v, cfg.TextFiles[v.String()])
		if err != nil {
			return nil, fmt.Errorf("failed to load %s text: %w", v, err)
		}
		sc, err := scorer.New(text, v)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s scorer: %w", v, err)
		}
		s.scorers[v] = sc
	}
	return s, nil
}

// Router returns the HTTP handler with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(CORS(s.cfg.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/users/{key}", s.handleGetUser)
		r.Post("/score", s.handleScore)
		r.Post("/suggest", s.handleSuggest)
		r.Get("/texts", s.handleTexts)

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuth(s.cfg.AdminToken))
			r.Put("/users/{key}", s.handleAdminSet)
			r.Delete("/users/{key}", s.handleAdminDelete)
		})
	})

	r.Get("/ws/practice", s.handlePractice)
	return r
}

func (s *Server) scorerFor(name string) (*scorer.Scorer, error) {
	v, err := mantra.ParseVariant(name)
	if err != nil {
		return nil, err
	}
	return s.scorers[v], nil
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
