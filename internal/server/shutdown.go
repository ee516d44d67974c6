package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"bizpulse/internal/config"
)

// GracefulServer runs an http.Server until SIGINT/SIGTERM, then drains
// in-flight requests and runs the registered shutdown hooks in reverse
// registration order. Hooks close resources the handlers depend on, so the
// server stops accepting work before any hook runs.
type GracefulServer struct {
	server *http.Server
	logger *slog.Logger
	config *config.Config

	mu    sync.Mutex
	hooks []func(ctx context.Context) error
}

func NewGracefulServer(server *http.Server, logger *slog.Logger, cfg *config.Config) *GracefulServer {
	return &GracefulServer{
		server: server,
		logger: logger,
		config: cfg,
	}
}

func (gs *GracefulServer) RegisterShutdownHook(fn func(ctx context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.hooks = append(gs.hooks, fn)
}

func (gs *GracefulServer) ListenAndServe() error {
	serveErr := make(chan error, 1)
	go func() {
		gs.logger.Info("listening", "addr", gs.server.Addr)
		serveErr <- gs.server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil

	case sig := <-stop:
		gs.logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), gs.config.Server.ShutdownTimeout)
	defer cancel()
	return gs.shutdown(ctx)
}

func (gs *GracefulServer) shutdown(ctx context.Context) error {
	gs.logger.Info("draining connections", "timeout", gs.config.Server.ShutdownTimeout)

	var errs []error
	if err := gs.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	gs.mu.Lock()
	hooks := make([]func(ctx context.Context) error, len(gs.hooks))
	copy(hooks, gs.hooks)
	gs.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			gs.logger.Error("shutdown hook failed", "hook", i, "error", err)
			errs = append(errs, fmt.Errorf("shutdown hook %d: %w", i, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	gs.logger.Info("shutdown complete")
	return nil
}
