package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dumbdev/katal/pkg/logger"
)

// CheckFunc reports whether a dependency can serve traffic.
// redis.Healthcheck returns one.
type CheckFunc func(ctx context.Context) error

// HealthOption tunes WithHealthChecks.
type HealthOption func(*healthConfig)

type healthConfig struct {
	checks        map[string]CheckFunc
	livenessPath  string
	readinessPath string
	timeout       time.Duration
}

func newHealthConfig(opts []HealthOption) *healthConfig {
	cfg := &healthConfig{
		checks:        map[string]CheckFunc{},
		livenessPath:  "/health/live",
		readinessPath: "/health/ready",
		timeout:       5 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithLivenessPath moves the liveness probe off /health/live.
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath moves the readiness probe off /health/ready.
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithHealthTimeout is the deadline shared by all readiness checks of one
// probe. The default is 5s.
func WithHealthTimeout(d time.Duration) HealthOption {
	return func(c *healthConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithReadinessCheck registers fn under name. A later registration with
// the same name replaces the earlier one.
//
//	katal.WithReadinessCheck("redis", redis.Healthcheck(client))
func WithReadinessCheck(name string, fn CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn != nil {
			c.checks[name] = fn
		}
	}
}

const (
	healthy   = "healthy"
	unhealthy = "unhealthy"
)

type probeReport struct {
	Checks map[string]checkReport `json:"checks,omitempty"`
	Status string                 `json:"status"`
}

type checkReport struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (r *probeReport) code() int {
	if r.Status == healthy {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

// liveness answers as long as the process can serve HTTP.
func liveness(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, r, &probeReport{Status: healthy})
}

// readiness runs every check concurrently and fails if any of them does.
func (cfg *healthConfig) readiness(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeProbe(w, r, cfg.probe(r.Context(), log))
	}
}

func (cfg *healthConfig) probe(ctx context.Context, log *slog.Logger) *probeReport {
	report := &probeReport{Status: healthy}
	if len(cfg.checks) == 0 {
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	report.Checks = make(map[string]checkReport, len(cfg.checks))
	for _, name := range slices.Sorted(maps.Keys(cfg.checks)) {
		check := cfg.checks[name]
		g.Go(func() error {
			res := checkReport{Status: healthy}
			if err := check(ctx); err != nil {
				res = checkReport{Status: unhealthy, Error: err.Error()}
				log.WarnContext(ctx, "readiness check failed", slog.String("check", name), logger.ErrorAttr(err))
			}
			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = res
			if res.Status == unhealthy {
				report.Status = unhealthy
			}
			return nil
		})
	}
	_ = g.Wait()
	return report
}

// writeProbe answers JSON for ?format=json or an Accept header asking for
// it, and a one-line text body otherwise.
func writeProbe(w http.ResponseWriter, r *http.Request, report *probeReport) {
	code := report.code()
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	if code == http.StatusOK {
		_, _ = w.Write([]byte("OK"))
		return
	}
	_, _ = w.Write([]byte("Service Unavailable"))
}
