package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dumbdev/katal/pkg/logger"
)

// Server limits applied when ServerConfig leaves a field zero.
const (
	defaultAddress           = ":8080"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 2 * time.Minute
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

// lifecycle drives one Run call: hooks, listener, drain.
type lifecycle struct {
	cfg *runConfig
	srv *http.Server
	log *slog.Logger
}

func newLifecycle(h http.Handler, cfg *runConfig) *lifecycle {
	addr := cfg.address
	if addr == "" {
		addr = defaultAddress
	}
	log := cfg.logger
	if log == nil {
		log = logger.NewNope()
	}

	return &lifecycle{
		cfg: cfg,
		log: log,
		srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadTimeout:       positive(cfg.server.ReadTimeout, defaultReadTimeout),
			WriteTimeout:      positive(cfg.server.WriteTimeout, defaultWriteTimeout),
			IdleTimeout:       positive(cfg.server.IdleTimeout, defaultIdleTimeout),
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			MaxHeaderBytes:    defaultMaxHeaderBytes,
		},
	}
}

// run blocks until the base context ends, a signal arrives or Serve fails.
func (l *lifecycle) run() error {
	base := l.cfg.baseCtx
	if base == nil {
		base = context.Background()
	}
	ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for i, hook := range l.cfg.startupHooks {
		if err := hook(ctx); err != nil {
			return fmt.Errorf("%w (hook %d): %w", ErrStartupHook, i, err)
		}
	}

	// From here on the startup hooks have run, so every exit path drains
	// and the shutdown hooks get to release what they acquired.
	ln := l.cfg.listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", l.srv.Addr); err != nil {
			return errors.Join(fmt.Errorf("listen %s: %w", l.srv.Addr, err), l.drain())
		}
	}

	served := make(chan error, 1)
	go func() {
		l.log.Info("server starting", slog.String("address", ln.Addr().String()))
		err := l.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		served <- err
	}()

	select {
	case err := <-served:
		if err != nil {
			l.log.Error("server failed", logger.ErrorAttr(err))
			return errors.Join(fmt.Errorf("serve: %w", err), l.drain())
		}
	case <-ctx.Done():
	}
	return l.drain()
}

// drain stops the listener, waits for in-flight requests, then runs the
// shutdown hooks in order. Every failure is collected.
func (l *lifecycle) drain() error {
	l.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), l.cfg.shutdownTimeout)
	defer cancel()

	errs := []error{l.srv.Shutdown(ctx)}
	for _, hook := range l.cfg.shutdownHooks {
		err := hook(ctx)
		if err != nil {
			l.log.ErrorContext(ctx, "shutdown hook failed", logger.ErrorAttr(err))
		}
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		l.log.Error("shutdown finished with errors")
		return err
	}
	l.log.Info("shutdown finished")
	return nil
}

func positive(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
