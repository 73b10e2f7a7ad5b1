// Package server exposes the conversation service over HTTP and a
// WebSocket bridge.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/florinato/mongoagent/internal/service"
)

// TraceReader returns the contents of the debug trace.
type TraceReader interface {
	Read() (string, error)
}

// Server routes HTTP and WebSocket requests to a service.Service.
type Server struct {
	svc     *service.Service
	trace   TraceReader
	limiter *rate.Limiter
	bridge  *Bridge
	started time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithTrace serves the debug trace at GET /log.
func WithTrace(t TraceReader) Option {
	return func(s *Server) { s.trace = t }
}

// WithRateLimit bounds chat requests to perSecond with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func New(svc *service.Service, opts ...Option) *Server {
	s := &Server{svc: svc, started: time.Now()}
	for _, opt := range opts {
		opt(s)
	}
	s.bridge = newBridge(s)
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return mux
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("POST /start_conversation", s.handleCreateSession)
	mux.HandleFunc("GET /sessions", s.handleListSessions)
	mux.HandleFunc("POST /sessions/{id}/chat", s.limited(s.handleChat))
	mux.HandleFunc("POST /chat/{id}", s.limited(s.handleChat))
	mux.HandleFunc("GET /sessions/{id}/history", s.handleHistory)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /log", s.handleLog)
	mux.HandleFunc("GET /ws", s.bridge.HandleWS)
}

// Run serves on host:port until ctx is cancelled.
func (s *Server) Run(ctx context.Context, host string, port int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("starting HTTP server", "addr", addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// allow reports whether a chat request may proceed now.
func (s *Server) allow() bool {
	return s.limiter == nil || s.limiter.Allow()
}

func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, retry shortly")
			return
		}
		next(w, r)
	}
}
