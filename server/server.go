// Package server exposes the selection workflow over an HTTP JSON API.
// One process owns one session; handlers serialize access with a mutex so
// the workflow packages can stay lock-free.
package server

import (
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/c360studio/vendoriq/metrics"
	"github.com/c360studio/vendoriq/rfp"
	"github.com/c360studio/vendoriq/workflow"
)

// Server drives a single workflow session over HTTP.
type Server struct {
	mu        sync.Mutex
	session   *workflow.Session
	generator *rfp.Generator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithGenerator enables the RFP generation endpoint.
func WithGenerator(g *rfp.Generator) Option {
	return func(s *Server) { s.generator = g }
}

// WithMetrics enables prometheus instrumentation and the /metrics endpoint.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New creates a server around an existing session.
func New(session *workflow.Session, opts ...Option) *Server {
	s := &Server{
		session: session,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics.SessionStarted()
	return s
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/session", s.handleGetSession).Methods(http.MethodGet)
	r.HandleFunc("/api/session/actions", s.handleAction).Methods(http.MethodPost)
	r.HandleFunc("/api/session/export", s.handleExport).Methods(http.MethodGet)
	r.HandleFunc("/api/rfp", s.handleRFP).Methods(http.MethodPost)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	return r
}

// Handler wraps the router with request logging and CORS for browser
// frontends.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router()
	if s.metrics != nil {
		h = s.metrics.WrapHandler("api", h)
	}
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	return handlers.LoggingHandler(os.Stderr, h)
}
