// Package server exposes a loaded commit dataset over HTTP: JSON endpoints
// for the summary, commits, files, time windows and brush selections, the
// HTML report, a WebSocket that mirrors the time slider, Prometheus metrics
// and a readiness probe.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/locstats/pkg/config"
	"github.com/Sumatoshi-tech/locstats/pkg/dataset"
	"github.com/Sumatoshi-tech/locstats/pkg/observability"
	"github.com/Sumatoshi-tech/locstats/pkg/report"
)

const shutdownTimeout = 10 * time.Second

// Source provides the dataset served by the server.
type Source interface {
	Initialize(ctx context.Context) (*dataset.Dataset, error)
	State() dataset.State
}

// Options configures a Server.
type Options struct {
	Config config.ServerConfig
	Report report.Options
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Tracer defaults to a no-op tracer.
	Tracer trace.Tracer
}

// Server serves one dataset source.
type Server struct {
	source   Source
	opts     Options
	logger   *slog.Logger
	metrics  *observability.Prometheus
	handler  http.Handler
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// New creates a server for source. Metrics are recorded in a registry owned
// by the server and exposed at /metrics.
func New(source Source, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Tracer == nil {
		opts.Tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	if opts.Config.FileLimit <= 0 {
		opts.Config.FileLimit = config.DefaultFileLimit
	}

	prom, err := observability.NewPrometheus()
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	red, err := observability.NewREDMetrics(prom.Meter)
	if err != nil {
		return nil, fmt.Errorf("init RED metrics: %w", err)
	}

	srv := &Server{
		source:  source,
		opts:    opts,
		logger:  opts.Logger,
		metrics: prom,
		conns:   make(map[*websocket.Conn]struct{}),
	}

	srv.upgrader = websocket.Upgrader{
		ReadBufferSize:  wsBufferSize,
		WriteBufferSize: wsBufferSize,
		CheckOrigin:     sameOrigin,
	}

	srv.handler = observability.HTTPMiddleware(opts.Tracer,
		observability.HTTPMetricsMiddleware(red, srv.routes()))

	return srv, nil
}

// Handler returns the root handler with tracing and metrics applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/commits", s.handleCommits)
	mux.HandleFunc("GET /api/files", s.handleFiles)
	mux.HandleFunc("GET /api/window", s.handleWindow)
	mux.HandleFunc("GET /api/selection", s.handleSelection)
	mux.HandleFunc("GET /ws/window", s.handleWindowSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler)
	mux.HandleFunc("GET /{$}", s.handleReport)

	return mux
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", s.opts.Config.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Config.Addr(), err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. Loading starts in the background so the first request does not
// pay for it; /healthz reports readiness.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.opts.Config.ReadTimeout,
		WriteTimeout: s.opts.Config.WriteTimeout,
		IdleTimeout:  s.opts.Config.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	httpServer.RegisterOnShutdown(s.closeSockets)

	go s.warm(ctx)

	errCh := make(chan error, 1)

	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	s.logger.InfoContext(ctx, "server listening", "addr", ln.Addr().String())

	select {
	case serveErr := <-errCh:
		if errors.Is(serveErr, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", serveErr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	shutdownErr := httpServer.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}

	s.logger.InfoContext(ctx, "server stopped")

	return nil
}

func (s *Server) warm(ctx context.Context) {
	ds, err := s.source.Initialize(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.WarnContext(ctx, "initial load failed", "error", err)
		}

		return
	}

	s.logger.InfoContext(ctx, "dataset loaded",
		"commits", len(ds.Commits), "records", len(ds.Records), "source", ds.Source)
}

func (s *Server) track(conn *websocket.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// closeSockets sends a close frame to every open WebSocket. Hijacked
// connections are not closed by http.Server.Shutdown.
func (s *Server) closeSockets() {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(wsWriteWait)
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")

	for conn := range s.conns {
		_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
		conn.Close()
	}
}
