// Package server exposes the chart view over HTTP: the page, the user
// transitions, raster images of the live state and a small JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/sharechart/internal/controller"
	"github.com/Sumatoshi-tech/sharechart/internal/rendercache"
	"github.com/Sumatoshi-tech/sharechart/pkg/observability"
)

// DefaultTitle is the page heading.
const DefaultTitle = "Smartphone Market Share"

const defaultDescription = "Brand share by country and year"

// Timeouts applied when Deps leaves them zero.
const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 16

// Deps holds the collaborators of a Server. Zero-value optional fields use
// production defaults.
type Deps struct {
	Controller *controller.Controller

	// Cache holds rendered images. Nil disables caching.
	Cache *rendercache.Cache
	// Width and Height size the raster images, in pixels.
	Width  int
	Height int

	Title       string
	Description string

	Metrics *observability.ChartMetrics
	RED     *observability.REDMetrics
	// Tracer is used for per-request spans. Nil uses a no-op tracer.
	Tracer trace.Tracer
	// MetricsHandler serves /metrics. Nil leaves the route unregistered.
	MetricsHandler http.Handler
	Ready          []observability.ReadyCheck
	Logger         *slog.Logger

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server routes HTTP requests to the controller.
type Server struct {
	deps    Deps
	ctrl    *controller.Controller
	logger  *slog.Logger
	handler http.Handler
}

// New builds the server and its routes.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	if deps.Tracer == nil {
		deps.Tracer = noop.NewTracerProvider().Tracer("")
	}

	if deps.Title == "" {
		deps.Title = DefaultTitle
	}

	if deps.Description == "" {
		deps.Description = defaultDescription
	}

	deps.ReadTimeout = orDefault(deps.ReadTimeout, defaultReadTimeout)
	deps.WriteTimeout = orDefault(deps.WriteTimeout, defaultWriteTimeout)
	deps.IdleTimeout = orDefault(deps.IdleTimeout, defaultIdleTimeout)
	deps.ShutdownTimeout = orDefault(deps.ShutdownTimeout, defaultShutdownTimeout)

	s := &Server{deps: deps, ctrl: deps.Controller, logger: deps.Logger}
	s.handler = s.routes()

	return s
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}

	return d
}

// Handler returns the root handler, wrapped in tracing and RED metrics.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /mode/{mode}", s.handleMode)
	mux.HandleFunc("POST /country", s.handleCountry)
	mux.HandleFunc("POST /year/drag", s.handleYearDrag)
	mux.HandleFunc("POST /year/commit", s.handleYearCommit)
	mux.HandleFunc("POST /theme/toggle", s.handleThemeToggle)
	mux.HandleFunc("POST /teardown", s.handleTeardown)

	mux.HandleFunc("GET /chart.png", s.handleImage)
	mux.HandleFunc("GET /chart.svg", s.handleImage)

	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/datasets", s.handleDatasets)

	mux.Handle("GET /healthz", observability.HealthHandler())
	mux.Handle("GET /readyz", observability.ReadyHandler(s.deps.Ready...))

	if s.deps.MetricsHandler != nil {
		mux.Handle("GET /metrics", s.deps.MetricsHandler)
	}

	return observability.HTTPMiddleware(s.deps.Tracer, s.deps.RED, mux)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully and persists the UI state.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.deps.ReadTimeout,
		WriteTimeout: s.deps.WriteTimeout,
		IdleTimeout:  s.deps.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- srv.Serve(listener)
	}()

	s.logger.InfoContext(ctx, "server listening", "addr", "http://"+listener.Addr().String())

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deps.ShutdownTimeout)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		shutdownErr = fmt.Errorf("shutdown: %w", shutdownErr)
	}

	closeErr := s.ctrl.Close(shutdownCtx)
	if closeErr != nil {
		closeErr = fmt.Errorf("persist ui state: %w", closeErr)
	}

	s.logger.InfoContext(shutdownCtx, "server stopped")

	return errors.Join(shutdownErr, closeErr)
}
