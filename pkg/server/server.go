package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/paramengine/pkg/config"
	"mercator-hq/paramengine/pkg/telemetry/health"
)

// Server serves parameter queries over HTTP.
type Server struct {
	config  *config.ServerConfig
	engine  Querier
	checker *health.Checker
	version health.VersionInfo
	logger  *slog.Logger

	metricsPath    string
	metricsHandler http.Handler

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server. A nil checker gets one with no checks and a
// nil logger uses slog.Default().
func NewServer(cfg *config.ServerConfig, eng Querier, checker *health.Checker, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server config cannot be nil")
	}
	if eng == nil {
		return nil, errors.New("engine cannot be nil")
	}
	if checker == nil {
		checker = health.New(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:  cfg,
		engine:  eng,
		checker: checker,
		logger:  logger.With("component", "server"),
	}, nil
}

// WithMetrics serves h at path.
func (s *Server) WithMetrics(path string, h http.Handler) *Server {
	s.metricsPath = path
	s.metricsHandler = h
	return s
}

// WithVersion sets the build information reported at /version.
func (s *Server) WithVersion(info health.VersionInfo) *Server {
	s.version = info
	return s
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	auth := APIKeyMiddleware(s.config.APIKeys, s.logger)
	queries := auth(&queryHandler{engine: s.engine})
	mux.Handle("GET /v1/parameters/{name}", queries)
	mux.Handle("POST /v1/parameters/{name}", queries)
	mux.Handle("POST /v1/functions/{name}", auth(&functionHandler{engine: s.engine}))

	health.Register(mux, s.checker, s.version)
	if s.metricsHandler != nil {
		mux.Handle("GET "+s.metricsPath, s.metricsHandler)
	}

	var handler http.Handler = mux
	handler = TimeoutMiddleware(s.config.WriteTimeout)(handler)
	handler = TraceContextMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	return handler
}

// Listen binds the configured address. Start calls it when needed; calling
// it first lets callers learn the bound address.
func (s *Server) Listen() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr(), nil
	}
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	s.listener = ln
	return ln.Addr(), nil
}

// Start serves until ctx is cancelled, then shuts down gracefully within the
// configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	addr, err := s.Listen()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	srv, ln := s.httpServer, s.listener
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting query server", "address", addr.String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("query server stopped")
	return <-errCh
}
