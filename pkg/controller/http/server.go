package http

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lwalder/veille/pkg/registry"
	"github.com/lwalder/veille/pkg/service/feed"
	"github.com/lwalder/veille/pkg/service/transit"
	"github.com/lwalder/veille/pkg/usecase"
	"github.com/lwalder/veille/pkg/utils/logging"
)

type Server struct {
	router    *chi.Mux
	uc        *usecase.UseCases
	registry  *registry.Registry
	transit   *transit.Client
	feed      *feed.Client
	devMode   bool
	version   string
	lookupEnv func(string) (string, bool)
}

type Options func(*Server)

// WithDevMode exposes internal error messages in 500 responses. Never
// enable it on a public deployment.
func WithDevMode(enabled bool) Options {
	return func(s *Server) {
		s.devMode = enabled
	}
}

func WithVersion(version string) Options {
	return func(s *Server) {
		s.version = version
	}
}

func WithTransit(client *transit.Client) Options {
	return func(s *Server) {
		s.transit = client
	}
}

func WithFeed(client *feed.Client) Options {
	return func(s *Server) {
		s.feed = client
	}
}

// WithLookupEnv replaces the environment lookup used by the monitor
// config report, for tests
func WithLookupEnv(lookup func(string) (string, bool)) Options {
	return func(s *Server) {
		s.lookupEnv = lookup
	}
}

func New(uc *usecase.UseCases, reg *registry.Registry, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:    r,
		uc:        uc,
		registry:  reg,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/aggregator", s.aggregatorHandler())
	r.Get("/monitor", s.monitorHandler())

	if s.transit != nil {
		r.Get("/api/transit/departures", s.transitHandler())
	}
	if s.feed != nil {
		r.Get("/api/feed", s.feedHandler())
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// apiKeyFromRequest extracts the caller credential. Precedence: the
// X-API-Key header, then an Authorization bearer token, then the api_key
// query parameter.
func apiKeyFromRequest(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if auth := r.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
		return auth[7:]
	}
	return r.URL.Query().Get("api_key")
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Default().Error("failed to encode response", "error", err.Error())
	}
}
