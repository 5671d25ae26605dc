// Package server serves the demo page and the streaming component action.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	streamui "github.com/haowjy/meridian-streamui-go"
	"github.com/haowjy/meridian-streamui-go/logging"
)

// ActionPath is the endpoint the page posts prompts to.
const ActionPath = "/actions/stream-component"

const shutdownTimeout = 5 * time.Second

// ComponentStreamer turns a prompt into a stream of UI updates.
type ComponentStreamer interface {
	StreamComponent(ctx context.Context, prompt string) (<-chan streamui.Update, error)
}

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. ":3000"
	Addr string

	// HomePath is where the page is served and where / redirects to
	HomePath string

	Logger *slog.Logger
}

// Server is the demo HTTP server.
type Server struct {
	action   ComponentStreamer
	addr     string
	homePath string
	logger   *slog.Logger
	handler  http.Handler
}

// New creates a Server for the given action.
func New(action ComponentStreamer, opts Options) (*Server, error) {
	if action == nil {
		return nil, errors.New("server: action is required")
	}
	if opts.HomePath == "" {
		opts.HomePath = "/home"
	}
	if !strings.HasPrefix(opts.HomePath, "/") || opts.HomePath == "/" {
		return nil, fmt.Errorf("server: invalid home path %q", opts.HomePath)
	}
	if opts.Logger == nil {
		opts.Logger = logging.WithComponent("server")
	}

	s := &Server{
		action:   action,
		addr:     opts.Addr,
		homePath: opts.HomePath,
		logger:   opts.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRedirect)
	mux.HandleFunc("GET "+s.homePath, s.handleHome)
	mux.HandleFunc("POST "+ActionPath, s.handleStreamComponent)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Chain: tracing -> request id -> access log -> mux
	s.handler = otelhttp.NewHandler(
		s.requestIDMiddleware(s.loggingMiddleware(mux)),
		"streamui",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	return s, nil
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String(), "home", s.homePath)

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)

	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
