package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"
)

// ErrStartupHook wraps a startup hook failure. The server never listens.
var ErrStartupHook = errors.New("katal: startup hook failed")

// ServerConfig is the loadable part of the server runtime.
type ServerConfig struct {
	Address         string        `yaml:"address" env:"SERVER_ADDRESS" envDefault:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" envDefault:"2m"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// RunOption tunes App.Run.
type RunOption func(*runConfig)

type hook = func(context.Context) error

type runConfig struct {
	baseCtx         context.Context
	logger          *slog.Logger
	address         string
	listener        net.Listener
	server          ServerConfig
	shutdownTimeout time.Duration
	startupHooks    []hook
	shutdownHooks   []hook
}

func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Address is the listen address. Empty keeps ":8080".
func Address(addr string) RunOption {
	return func(c *runConfig) {
		if addr != "" {
			c.address = addr
		}
	}
}

// Listener serves on ln instead of opening one from the address, for
// socket activation or a pre-bound port. Run owns ln from then on.
func Listener(ln net.Listener) RunOption {
	return func(c *runConfig) {
		if ln != nil {
			c.listener = ln
		}
	}
}

// WithServerConfig applies timeouts and the address from a loaded config.
// Zero fields keep their defaults. A later Address still wins.
func WithServerConfig(sc ServerConfig) RunOption {
	return func(c *runConfig) {
		c.server = sc
		Address(sc.Address)(c)
		ShutdownTimeout(sc.ShutdownTimeout)(c)
	}
}

// Logger overrides the App logger for server lifecycle messages.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds the whole drain: in-flight requests plus every
// shutdown hook share one deadline.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook runs fn before the listener opens. The first failure aborts
// Run with ErrStartupHook and no shutdown hook runs.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook runs fn after the server drained. Hooks run in registration
// order and the container is closed last.
//
//	katal.ShutdownHook(redis.Shutdown(client))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext sets the parent of the signal context. Cancelling ctx stops
// the server the same way SIGTERM does.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}
