package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mw "digitalgeosciences.com/geo-web/internal/middleware"
	"digitalgeosciences.com/geo-web/internal/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	l, err := observability.NewLogger(cfg.Dev)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()
	if err := setup(cfg, l); err != nil {
		return err
	}
	mw.SetSecureCookies(!cfg.Dev)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if devMode && !contentLoader.Remote() {
		if _, err := contentLoader.Watch(ctx); err != nil {
			l.Warn("content watcher disabled", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(cfg.Server.RequestTimeout),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("web listening",
			zap.String("addr", cfg.Server.Addr),
			zap.Bool("dev", devMode),
			zap.String("join_mode", string(joinMode)),
			zap.Bool("remote_content", contentLoader.Remote()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	l.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// newRouter builds the middleware chain and routes shared by serve and export.
func newRouter(timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP. Ensure only trusted proxies
	// can set these headers in production environments.
	r.Use(middleware.RealIP)
	r.Use(mw.HTMX)
	r.Use(mw.Logger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}
	r.Use(mw.CSRF)

	routes(r)
	return r
}
