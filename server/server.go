// Package server exposes the ingestion and cart services over HTTP.
// Authentication is delegated to an Authenticator; the handlers only
// need an owner identity per request.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kurate/kurate/cart"
	"github.com/kurate/kurate/ingest"
)

// Authenticator resolves the owner identity of a request. Implementations
// typically verify a session cookie or bearer token.
type Authenticator interface {
	Owner(r *http.Request) (string, error)
}

// AuthFunc adapts a function to the Authenticator interface.
type AuthFunc func(r *http.Request) (string, error)

// Owner implements Authenticator.
func (f AuthFunc) Owner(r *http.Request) (string, error) { return f(r) }

// HeaderAuth authenticates from a trusted header, for deployments behind
// an auth proxy that injects the verified identity.
func HeaderAuth(header string) Authenticator {
	return AuthFunc(func(r *http.Request) (string, error) {
		owner := r.Header.Get(header)
		if owner == "" {
			return "", errors.New("missing identity header")
		}
		return owner, nil
	})
}

// Server holds the HTTP handlers.
type Server struct {
	ingest *ingest.Service
	carts  *cart.Service
	auth   Authenticator
	logger *slog.Logger
}

// New builds a Server. A nil logger discards log output.
func New(ing *ingest.Service, carts *cart.Service, auth Authenticator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{ingest: ing, carts: carts, auth: auth, logger: logger}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Post("/upload", s.handleUpload)
			r.Post("/url", s.handleSubmitURL)
			r.Get("/", s.handleListDocuments)
			r.Get("/{id}", s.handleGetDocument)
			r.Delete("/{id}", s.handleDeleteDocument)
		})
		r.Route("/carts", func(r chi.Router) {
			r.Post("/", s.handleCreateCart)
			r.Get("/", s.handleListCarts)
			r.Get("/{id}", s.handleGetCart)
			r.Put("/{id}", s.handleUpdateCart)
			r.Delete("/{id}", s.handleDeleteCart)
			r.Get("/{id}/export", s.handleExportCart)
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// fail maps service errors onto HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ingest.ErrNotFound), errors.Is(err, cart.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ingest.ErrUnsupportedFormat),
		errors.Is(err, ingest.ErrInvalidURL),
		errors.Is(err, cart.ErrInvalidCart):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ingest.ErrFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// owner resolves the request identity or writes a 401.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, err := s.auth.Owner(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return owner, true
}
