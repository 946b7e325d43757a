package middlewares

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dumbdev/katal/internal"
)

// unmatchedRoute labels requests that matched no route, keeping the
// label set bounded.
const unmatchedRoute = "unmatched"

// HTTPMetrics holds the request collectors fed by the Metrics middleware.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics creates the collectors and registers them with reg.
// Collectors already registered under the same names are reused, so
// building two App instances against one registry works.
func NewHTTPMetrics(namespace string, reg prometheus.Registerer) (*HTTPMetrics, error) {
	if namespace == "" {
		namespace = "katal"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	var err error
	m.requests, err = register(reg, m.requests)
	if err != nil {
		return nil, err
	}
	m.duration, err = register(reg, m.duration)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

type metricsStartKey struct{}

// Metrics returns middleware recording request count and latency for
// every request, error handler responses included.
// Register it first among global middleware so the latency covers the rest
// of the pipeline.
func Metrics(m *HTTPMetrics) internal.Middleware {
	return internal.Middleware{
		Before: func(c internal.Context) (*internal.Response, error) {
			c.Set(metricsStartKey{}, time.Now())
			return nil, nil
		},
		Done: func(c internal.Context, res *internal.Response) {
			start, ok := c.Get(metricsStartKey{}).(time.Time)
			if !ok {
				return
			}

			route := unmatchedRoute
			if r := c.Route(); r != nil {
				route = r.Path
			}
			method := c.Request().Method

			m.requests.WithLabelValues(method, route, strconv.Itoa(statusOf(res))).Inc()
			m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		},
	}
}

// statusOf is the status WriteTo sends for res.
func statusOf(res *internal.Response) int {
	if res == nil || res.Status == 0 {
		return http.StatusOK
	}
	return res.Status
}
