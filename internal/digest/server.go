package digest

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds a whole summarization request
const DefaultRequestTimeout = 2 * time.Minute

// Server handles HTTP requests for digests
type Server struct {
	service        *Service
	requestTimeout time.Duration
	mux            *http.ServeMux
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, requestTimeout time.Duration) *Server {
	return NewServerWithMux(service, requestTimeout, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, requestTimeout time.Duration, mux *http.ServeMux) *Server {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	s := &Server{
		service:        service,
		requestTimeout: requestTimeout,
		mux:            mux,
	}
	s.registerRoutes()
	return s
}

// corsMiddleware adds CORS headers to responses and answers preflight requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// registerRoutes registers all API routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Narrative only, for clients that do not keep digests
	s.mux.HandleFunc("POST /summarize", s.handleSummarize)

	s.mux.HandleFunc("GET /api/digests/{id}/image", s.handleGetDigestImage)
	s.mux.HandleFunc("GET /api/digests/{id}", s.handleGetDigest)
	s.mux.HandleFunc("DELETE /api/digests/{id}", s.handleDeleteDigest)
	s.mux.HandleFunc("GET /api/digests", s.handleListDigests)
	s.mux.HandleFunc("POST /api/digests", s.handleCreateDigest)

	s.mux.HandleFunc("POST /api/conversations", s.handleCreateFromLines)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, s)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	corsMiddleware(s.mux).ServeHTTP(w, r)
}
