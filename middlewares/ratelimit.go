package middlewares

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/dumbdev/katal/internal"
	"github.com/dumbdev/katal/pkg/cache"
)

// RateLimitConfig is the loadable rate limit policy.
type RateLimitConfig struct {
	// Requests allowed per Window.
	Requests int           `yaml:"requests" env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	Window   time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	// Burst applies to the local token bucket only. Zero means Requests.
	Burst int `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

// LimitResult is the outcome of one rate limit check.
type LimitResult struct {
	Limit      int
	Remaining  int
	ResetAfter time.Duration
	RetryAfter time.Duration
	Allowed    bool
}

// Limiter decides whether the request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (LimitResult, error)
}

// LocalLimiter keeps one token bucket per key in process memory. A bucket
// is dropped once it has been idle long enough to be full again.
type LocalLimiter struct {
	buckets *cache.Memory[*rate.Limiter]
	limit   rate.Limit
	burst   int
}

// NewLocalLimiter allows cfg.Requests per cfg.Window per key with bursts of
// cfg.Burst. Close it on shutdown to stop its janitor.
func NewLocalLimiter(cfg RateLimitConfig) (*LocalLimiter, error) {
	if cfg.Requests <= 0 || cfg.Window <= 0 {
		return nil, ErrInvalidLimit
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Requests
	}

	limit := rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds())
	refillFull := time.Duration(float64(burst) / float64(limit) * float64(time.Second))
	idleTTL := max(cfg.Window, refillFull)

	return &LocalLimiter{
		buckets: cache.NewMemory[*rate.Limiter](
			cache.WithDefaultTTL(idleTTL),
			cache.WithSlidingExpiration(),
			cache.WithCleanupInterval(idleTTL),
		),
		limit: limit,
		burst: burst,
	}, nil
}

func (l *LocalLimiter) Allow(ctx context.Context, key string) (LimitResult, error) {
	bucket, err := cache.GetOrSet(ctx, l.buckets, key, func(context.Context) (*rate.Limiter, time.Duration, error) {
		return rate.NewLimiter(l.limit, l.burst), 0, nil
	})
	if err != nil {
		return LimitResult{}, fmt.Errorf("rate limit bucket: %w", err)
	}

	now := time.Now()
	allowed := bucket.AllowN(now, 1)
	tokens := bucket.TokensAt(now)

	res := LimitResult{
		Allowed:    allowed,
		Limit:      l.burst,
		Remaining:  max(int(math.Floor(tokens)), 0),
		ResetAfter: l.refill(float64(l.burst) - tokens),
	}
	if !allowed {
		res.RetryAfter = l.refill(1 - tokens)
	}
	return res, nil
}

// refill returns how long the bucket needs to gain n tokens.
func (l *LocalLimiter) refill(n float64) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n / float64(l.limit) * float64(time.Second))
}

// Close stops the bucket janitor.
func (l *LocalLimiter) Close() error {
	return l.buckets.Close()
}

// fixedWindowScript counts requests in the current window.
// Returns {allowed, remaining, reset_ms}.
var fixedWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local window_start = math.floor(now / window_ms) * window_ms
local window_key = key .. ':' .. window_start

local count = tonumber(redis.call('GET', window_key) or '0')
local allowed = 0
if count < limit then
	count = redis.call('INCR', window_key)
	if count == 1 then
		redis.call('PEXPIRE', window_key, window_ms)
	end
	allowed = 1
end

return {allowed, limit - count, window_start + window_ms - now}
`)

// RedisLimiter is a fixed window counter shared by every instance that
// talks to the same Redis.
type RedisLimiter struct {
	client redis.Scripter
	now    func() time.Time
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter allows cfg.Requests per cfg.Window per key.
func NewRedisLimiter(client redis.Scripter, cfg RateLimitConfig, prefix string) (*RedisLimiter, error) {
	if cfg.Requests <= 0 || cfg.Window < time.Millisecond {
		return nil, ErrInvalidLimit
	}
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{
		client: client,
		now:    time.Now,
		prefix: prefix,
		limit:  cfg.Requests,
		window: cfg.Window,
	}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (LimitResult, error) {
	vals, err := fixedWindowScript.Run(ctx, l.client,
		[]string{l.prefix + ":" + key},
		l.limit, l.window.Milliseconds(), l.now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return LimitResult{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return LimitResult{}, fmt.Errorf("rate limit script: unexpected reply %v", vals)
	}

	res := LimitResult{
		Allowed:    vals[0] == 1,
		Limit:      l.limit,
		Remaining:  max(int(vals[1]), 0),
		ResetAfter: time.Duration(vals[2]) * time.Millisecond,
	}
	if !res.Allowed {
		res.RetryAfter = res.ResetAfter
	}
	return res, nil
}

type rateLimitConfig struct {
	key      func(c internal.Context) string
	failOpen bool
	headers  bool
}

// RateLimitOption configures the RateLimit middleware.
type RateLimitOption func(*rateLimitConfig)

// WithRateLimitKey sets how requests are grouped. Defaults to ClientIP.
func WithRateLimitKey(fn func(c internal.Context) string) RateLimitOption {
	return func(cfg *rateLimitConfig) {
		if fn != nil {
			cfg.key = fn
		}
	}
}

// WithRateLimitExtractor keys requests by the first value ext finds, and
// by client IP when it finds none.
//
//	middlewares.WithRateLimitExtractor(katal.NewExtractor(katal.FromHeader("X-API-Key")))
func WithRateLimitExtractor(ext internal.Extractor) RateLimitOption {
	return WithRateLimitKey(func(c internal.Context) string {
		if v, ok := ext.Extract(c); ok {
			return v
		}
		return ClientIP(c)
	})
}

// WithFailClosed rejects requests when the limiter errors. By default a
// broken limiter lets traffic through.
func WithFailClosed() RateLimitOption {
	return func(cfg *rateLimitConfig) {
		cfg.failOpen = false
	}
}

// WithoutRateLimitHeaders stops the X-RateLimit-* headers on allowed requests.
func WithoutRateLimitHeaders() RateLimitOption {
	return func(cfg *rateLimitConfig) {
		cfg.headers = false
	}
}

type rateLimitResultKey struct{}

// RateLimit returns middleware that consults l in the before phase and
// answers 429 with Retry-After when the limit is exhausted. Allowed
// responses carry X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset, added in the after phase.
func RateLimit(l Limiter, opts ...RateLimitOption) internal.Middleware {
	cfg := &rateLimitConfig{key: ClientIP, failOpen: true, headers: true}
	for _, opt := range opts {
		opt(cfg)
	}

	return internal.Middleware{
		Before: func(c internal.Context) (*internal.Response, error) {
			res, err := l.Allow(c, cfg.key(c))
			if err != nil {
				if cfg.failOpen {
					c.LogWarn("rate limiter unavailable", slog.Any("error", err))
					return nil, nil
				}
				return nil, err
			}
			if !res.Allowed {
				out := internal.ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded")
				setRateLimitHeaders(out.Header, res)
				out.Header.Set("Retry-After", strconv.Itoa(ceilSeconds(res.RetryAfter)))
				return out, nil
			}
			c.Set(rateLimitResultKey{}, res)
			return nil, nil
		},
		After: func(c internal.Context, res *internal.Response) (*internal.Response, error) {
			if !cfg.headers {
				return res, nil
			}
			if r, ok := c.Get(rateLimitResultKey{}).(LimitResult); ok {
				res = res.Clone()
				setRateLimitHeaders(res.Header, r)
			}
			return res, nil
		},
	}
}

func setRateLimitHeaders(h http.Header, r LimitResult) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(r.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(r.Remaining))
	h.Set("X-RateLimit-Reset", strconv.Itoa(ceilSeconds(r.ResetAfter)))
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

// ClientIP returns the host part of RemoteAddr. Put katal.WithRealIP in
// front when the app runs behind a proxy.
func ClientIP(c internal.Context) string {
	addr := c.Request().RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

var (
	_ Limiter = (*LocalLimiter)(nil)
	_ Limiter = (*RedisLimiter)(nil)
)
