package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/mediaranker/internal/server"
	"github.com/desertthunder/mediaranker/internal/session"
	"github.com/desertthunder/mediaranker/internal/shared"
	"github.com/desertthunder/mediaranker/internal/web"
	"github.com/urfave/cli/v3"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = 10 * time.Minute
	limiterMaxIdle  = 30 * time.Minute
)

// Serve runs the web application until interrupted, then drains in-flight requests.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := r.buildHandler(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := r.config.Server.Addr()
	if override := cmd.String("addr"); override != "" {
		addr = override
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  r.config.Server.ReadTimeout.Duration,
		WriteTimeout: r.config.Server.WriteTimeout.Duration,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	r.logger.Info("listening", "addr", ln.Addr().String(), "base_url", r.config.Server.BaseURL)

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(r.config.Server.BaseURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// buildHandler wires the session store, OAuth providers, rate limiter and database into the web app.
//
// The returned cleanup closes the session store.
func (r *Runner) buildHandler(ctx context.Context) (http.Handler, func(), error) {
	db, err := r.database()
	if err != nil {
		return nil, nil, err
	}

	cfg := r.config.Session
	if err := cfg.CheckSecret(); err != nil {
		return nil, nil, err
	}

	store, err := session.NewStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if closer, ok := store.(io.Closer); ok {
			closer.Close()
		}
	}

	if mem, ok := store.(*session.MemoryStore); ok {
		go r.sweepSessions(ctx, mem)
	}

	manager, err := session.NewManager(session.Options{
		Store:      store,
		Secret:     []byte(cfg.Secret),
		CookieName: cfg.CookieName,
		TTL:        cfg.TTL.Duration,
		Secure:     cfg.Secure,
		Logger:     r.logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var providers []server.Provider
	if github, err := server.NewGitHubProvider(r.config.Credentials.GitHub); err != nil {
		r.logger.Warn("github login disabled", "error", err)
	} else {
		providers = append(providers, github)
	}

	var limiter *server.RateLimiter
	if rl := r.config.RateLimit; rl.RequestsPerSecond > 0 {
		limiter = server.NewRateLimiter(rl.RequestsPerSecond, rl.Burst)
		go r.sweepLimiter(ctx, limiter)
	}

	app, err := web.New(web.Options{
		DB:        db,
		Sessions:  manager,
		Providers: providers,
		Limiter:   limiter,
		Logger:    r.logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return app.Handler(), cleanup, nil
}

// sweepSessions drops expired in-memory sessions until ctx is done.
func (r *Runner) sweepSessions(ctx context.Context, store *session.MemoryStore) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				r.logger.Debug("swept expired sessions", "count", n, "remaining", store.Len())
			}
		}
	}
}

// sweepLimiter drops idle per-client rate limit buckets until ctx is done.
func (r *Runner) sweepLimiter(ctx context.Context, limiter *server.RateLimiter) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(limiterMaxIdle); n > 0 {
				r.logger.Debug("swept idle rate limiters", "count", n, "remaining", limiter.Len())
			}
		}
	}
}
