// Package api serves wheel configurations over a Directus-style REST API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/spinner/internal/adapters/http/wire"
	"github.com/okian/spinner/internal/adapters/repository"
	"github.com/okian/spinner/pkg/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Store is the persistence the handlers depend on.
type Store interface {
	repository.Store
	Ping(ctx context.Context) error
}

// Server wires HTTP routes for the configuration API.
type Server struct {
	authHandler     *AuthHandler
	spinnersHandler *SpinnersHandler
	healthHandler   *HealthHandler
	tokens          *TokenIssuer
	logger          logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(store Store, tokens *TokenIssuer, opts ...Option) *Server {
	s := &Server{tokens: tokens, logger: logger.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.authHandler = NewAuthHandler(store, tokens, s.logger)
	s.spinnersHandler = NewSpinnersHandler(store, s.logger)
	s.healthHandler = NewHealthHandler(store)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())

	mux.HandleFunc("POST /auth/login", MetricsMiddleware(s.authHandler.HandleLogin, "auth_login"))
	mux.HandleFunc("POST /auth/logout", MetricsMiddleware(s.requireAuth(s.authHandler.HandleLogout), "auth_logout"))
	mux.HandleFunc("GET /users/me", MetricsMiddleware(s.requireAuth(s.authHandler.HandleMe), "users_me"))

	mux.HandleFunc("GET /items/spinners", MetricsMiddleware(s.requireAuth(s.spinnersHandler.HandleList), "spinners_list"))
	mux.HandleFunc("POST /items/spinners", MetricsMiddleware(s.requireAuth(s.spinnersHandler.HandleCreate), "spinners_create"))
	mux.HandleFunc("GET /items/spinners/{id}", MetricsMiddleware(s.requireAuth(s.spinnersHandler.HandleGet), "spinners_get"))
	mux.HandleFunc("PATCH /items/spinners/{id}", MetricsMiddleware(s.requireAuth(s.spinnersHandler.HandleUpdate), "spinners_update"))
	mux.HandleFunc("DELETE /items/spinners/{id}", MetricsMiddleware(s.requireAuth(s.spinnersHandler.HandleDelete), "spinners_delete"))
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, wire.Envelope[any]{Data: v})
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil && status < http.StatusInternalServerError {
		msg = publicMessage(err)
	}
	writeJSON(w, status, wire.ErrorBody{Errors: []wire.Error{{
		Message:    msg,
		Extensions: wire.ErrorExtensions{Code: code},
	}}})
}

// publicMessage strips operation prefixes from known kinds.
func publicMessage(err error) string {
	for _, kind := range []error{ErrTokenExpired, ErrUnauthorized, repository.ErrNotFound, repository.ErrInvalidCredentials} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return err.Error()
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
