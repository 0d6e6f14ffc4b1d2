package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/xrelay/internal/adapters/http/api"
	"github.com/okian/xrelay/internal/adapters/http/swagger"
	service "github.com/okian/xrelay/internal/app"
	"github.com/okian/xrelay/internal/config"
	"github.com/okian/xrelay/pkg/logger"
)

// HTTP server timeout constants. There is no write timeout: a relayed call
// may legitimately wait on a slow upstream for as long as the client allows.
const (
	readTimeout       = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return errors.Join(errors.New("failed to load config"), err)
	}

	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(format)); err != nil {
		return errors.Join(errors.New("failed to initialize logging"), err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := service.New(
		service.WithLogger(log.Named("relay")),
		service.WithUpstreamBaseURL(cfg.UpstreamBaseURL),
		service.WithUpstreamTimeout(cfg.UpstreamTimeout()),
	)
	if err := svc.Start(ctx); err != nil {
		return errors.Join(errors.New("failed to start service"), err)
	}
	defer svc.Stop()

	srv := newHTTPServer(cfg.Addr(), newHandler(ctx, cfg, svc, log))

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "Twitter API Proxy Server running", logger.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error(ctx, "HTTP server failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newHandler assembles the router, relay routes, docs and CORS.
func newHandler(ctx context.Context, cfg *config.Config, deps api.Dependencies, log logger.Logger) http.Handler {
	opts := []api.ServerOption{api.WithLogger(log.Named("http"))}
	if cfg.MetricsEnabled {
		opts = append(opts, api.WithMetricsHandler(api.NewMetricsHandler()))
	}

	router := api.NewRouter()
	api.NewServer(deps, opts...).Register(ctx, router)
	swagger.Register(ctx, router)

	return api.CORS(router)
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
