package receipt

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/zombor/receipt-processor/internal/metrics"
)

// Server handles HTTP requests for receipts
type Server struct {
	service *Service
	metrics *metrics.Registry
	mux     *http.ServeMux

	mu      sync.Mutex
	httpSrv *http.Server
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, reg *metrics.Registry) *Server {
	return NewServerWithMux(service, reg, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, reg *metrics.Registry, mux *http.ServeMux) *Server {
	s := &Server{
		service: service,
		metrics: reg,
		mux:     mux,
	}
	s.registerRoutes()
	return s
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// timed records request latency under the given route label
func (s *Server) timed(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		s.metrics.RequestLatencySec.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// registerRoutes registers all API routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /receipts/process", s.timed("process", s.handleProcessReceipt))
	s.mux.HandleFunc("GET /receipts/{id}/points/breakdown", s.timed("breakdown", s.handleGetBreakdown))
	s.mux.HandleFunc("GET /receipts/{id}/points", s.timed("points", s.handleGetPoints))
	s.mux.HandleFunc("GET /receipts/{id}", s.timed("receipt", s.handleGetReceipt))
	s.mux.HandleFunc("GET /receipts", s.timed("list", s.handleListReceipts))

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.corsMiddleware(s.mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops a server started with Start
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpSrv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.corsMiddleware(s.mux).ServeHTTP(w, r)
}
