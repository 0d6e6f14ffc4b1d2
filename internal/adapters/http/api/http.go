// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/okian/xrelay/internal/adapters/upstream"
	"github.com/okian/xrelay/pkg/logger"
)

// Dependencies required by HTTP handlers. Each call performs exactly one
// upstream request and returns its status and body.
type Dependencies interface {
	CurrentUser(ctx context.Context, authorization string) (*upstream.Response, error)
	OwnedLists(ctx context.Context, authorization, userID string) (*upstream.Response, error)
	ListTweets(ctx context.Context, authorization, listID, maxResults string) (*upstream.Response, error)
}

// Server wires HTTP routes for the relay API.
type Server struct {
	healthHandler  *HealthHandler
	userHandler    *UserHandler
	listHandler    *ListHandler
	metricsHandler http.Handler
	logger         logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMetricsHandler exposes h at GET /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

// WithLogger sets the logger used for access and failure logs.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("http")
	}
	s.userHandler = NewUserHandler(deps, s.logger)
	s.listHandler = NewListHandler(deps, s.logger)
	return s
}

// Relay route patterns.
const (
	routeRoot       = "/"
	routeUserMe     = "/api/user/me"
	routeUserLists  = "/api/user/lists"
	routeListTweets = "/api/list/tweets/{listId}"
)

// NewRouter returns a router carrying the relay's middleware stack. Routes
// must be registered after this call.
func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(CaseInsensitivePaths(routeUserMe, routeUserLists, routeListTweets))
	r.Use(middleware.GetHead)
	r.NotFound(http.NotFound)
	r.MethodNotAllowed(http.NotFound)
	return r
}

// Register attaches all relay routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Get(routeRoot, MetricsMiddleware(s.healthHandler.HandleRoot, "root"))
	r.Get(routeUserMe, MetricsMiddleware(s.userHandler.HandleMe, "user_me"))
	r.Get(routeUserLists, MetricsMiddleware(s.userHandler.HandleLists, "user_lists"))
	r.Get(routeListTweets, MetricsMiddleware(s.listHandler.HandleTweets, "list_tweets"))

	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}
}

// CORS permits every origin, method and requested header, and answers preflights.
func CORS(next http.Handler) http.Handler {
	return cors.AllowAll().Handler(next)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

// writeRelayed copies an upstream response to w byte-for-byte.
func writeRelayed(w http.ResponseWriter, resp *upstream.Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// writeFailure maps a handler error to its status and body.
func writeFailure(ctx context.Context, log logger.Logger, w http.ResponseWriter, endpoint string, err error) {
	switch {
	case errors.Is(err, ErrMissingAuthorization):
		writeError(w, http.StatusUnauthorized, msgNoAuthorization, "")
	case errors.Is(err, ErrMissingParameter):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	default:
		fields := []logger.Field{logger.String("endpoint", endpoint), logger.Error(err)}
		var uerr *upstream.Error
		if errors.As(err, &uerr) {
			fields = append(fields, logger.String("resource", uerr.Resource), logger.String("kind", upstream.KindLabel(err)))
		}
		log.Error(ctx, "relay failed", fields...)
		writeError(w, http.StatusInternalServerError, msgInternalError, err.Error())
	}
}
