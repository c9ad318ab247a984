package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garrettladley/marine/internal/xhttp"
	"github.com/garrettladley/marine/internal/xhttp/middleware"
	"github.com/garrettladley/marine/internal/xslog"
)

const (
	keyAddr = "addr"
	keyUI   = "ui"

	shutdownTimeout = 30 * time.Second
)

type Config struct {
	Port       string
	UIURL      string
	SignInPath string
	// Metrics, when set, is served on GET /metrics.
	Metrics prometheus.Gatherer
}

// NewHandler builds the gateway's routes: a health check, optional metrics and
// the guarded reverse proxy to the UI.
func NewHandler(cfg Config, validator *Validator, logger *slog.Logger) (http.Handler, error) {
	target, err := url.Parse(cfg.UIURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ui url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("ui url %q must be absolute", cfg.UIURL)
	}

	signInPath := cfg.SignInPath
	if signInPath == "" {
		signInPath = "/sign-in"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{}))
	}
	mux.Handle("/", middleware.Chain(NewProxy(target), Guard(validator, signInPath)))

	return middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Logging,
		middleware.Recovery,
		middleware.SecurityHeaders,
	), nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	xhttp.WriteOK(w, map[string]string{"status": "ok"})
}

type Server struct {
	httpServer *http.Server
	uiURL      string
	logger     *slog.Logger
}

func New(cfg Config, validator *Validator, logger *slog.Logger) (*Server, error) {
	handler, err := NewHandler(cfg, validator, logger)
	if err != nil {
		return nil, err
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		uiURL:  cfg.UIURL,
		logger: logger,
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer.BaseContext = func(net.Listener) context.Context {
		return context.WithoutCancel(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "starting gateway",
			xslog.Version(),
			slog.String(keyAddr, ln.Addr().String()),
			slog.String(keyUI, s.uiURL))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("gateway error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.InfoContext(ctx, "shutdown signal received, stopping gateway")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gateway shutdown failed: %w", err)
	}

	s.logger.InfoContext(ctx, "gateway stopped")
	return nil
}
