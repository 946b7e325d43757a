package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dumbdev/katal/internal"
)

// defaultCORS allows any origin with the usual REST methods and caches
// preflight answers for 12 hours.
func defaultCORS() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:       12 * time.Hour,
	}
}

// CORSConfig configures the CORS middleware. It can be loaded from YAML or
// the environment with pkg/config.
type CORSConfig struct {
	// AllowOriginFunc overrides AllowOrigins when set.
	AllowOriginFunc func(origin string) bool `yaml:"-" env:"-"`

	// AllowOrigins is a static list of allowed origins. "*" allows any.
	AllowOrigins []string `yaml:"allow_origins" env:"CORS_ALLOW_ORIGINS" envSeparator:","`

	AllowMethods  []string `yaml:"allow_methods" env:"CORS_ALLOW_METHODS" envSeparator:","`
	AllowHeaders  []string `yaml:"allow_headers" env:"CORS_ALLOW_HEADERS" envSeparator:","`
	ExposeHeaders []string `yaml:"expose_headers" env:"CORS_EXPOSE_HEADERS" envSeparator:","`

	// MaxAge is how long browsers may cache a preflight answer.
	MaxAge time.Duration `yaml:"max_age" env:"CORS_MAX_AGE"`

	// AllowCredentials echoes the request origin instead of "*".
	AllowCredentials bool `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
}

// CORSOption adjusts the policy built by CORS.
type CORSOption func(*CORSConfig)

// WithCORSConfig replaces the whole configuration. Empty lists keep their
// defaults.
func WithCORSConfig(c CORSConfig) CORSOption {
	return func(cfg *CORSConfig) {
		if len(c.AllowOrigins) > 0 {
			cfg.AllowOrigins = c.AllowOrigins
		}
		if len(c.AllowMethods) > 0 {
			cfg.AllowMethods = c.AllowMethods
		}
		if len(c.AllowHeaders) > 0 {
			cfg.AllowHeaders = c.AllowHeaders
		}
		if c.MaxAge > 0 {
			cfg.MaxAge = c.MaxAge
		}
		cfg.ExposeHeaders = c.ExposeHeaders
		cfg.AllowCredentials = c.AllowCredentials
		cfg.AllowOriginFunc = c.AllowOriginFunc
	}
}

// WithAllowOrigins lists exact origins to allow. "*" allows every origin.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOrigins = origins
	}
}

// WithAllowOriginFunc decides per origin. AllowOrigins is then ignored.
func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOriginFunc = fn
	}
}

// WithAllowMethods is the Access-Control-Allow-Methods list for preflights.
func WithAllowMethods(methods ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowMethods = methods
	}
}

// WithAllowHeaders is the Access-Control-Allow-Headers list for preflights.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowHeaders = headers
	}
}

// WithExposeHeaders lets browser scripts read the given response headers.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.ExposeHeaders = headers
	}
}

// WithAllowCredentials permits cookies and auth headers on cross-origin
// calls. The concrete origin is echoed instead of "*".
func WithAllowCredentials() CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowCredentials = true
	}
}

// WithMaxAge is how long a browser may reuse a preflight answer.
func WithMaxAge(duration time.Duration) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.MaxAge = duration
	}
}

type corsPolicy struct {
	cfg           CORSConfig
	allowMethods  string
	allowHeaders  string
	exposeHeaders string
	maxAge        string
	hasWildcard   bool
}

// CORS applies a cross-origin policy.
//
// A preflight request (OPTIONS with Origin and Access-Control-Request-Method)
// from an allowed origin is answered with 204 in the before phase. Every
// other response to an allowed origin gets the CORS headers in the after
// phase. Disallowed origins get no CORS headers and the browser blocks them.
func CORS(opts ...CORSOption) internal.Middleware {
	cfg := defaultCORS()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &corsPolicy{
		cfg:           cfg,
		allowMethods:  strings.Join(cfg.AllowMethods, ", "),
		allowHeaders:  strings.Join(cfg.AllowHeaders, ", "),
		exposeHeaders: strings.Join(cfg.ExposeHeaders, ", "),
		maxAge:        strconv.Itoa(int(cfg.MaxAge.Seconds())),
		hasWildcard:   slices.Contains(cfg.AllowOrigins, "*"),
	}

	return internal.Middleware{
		Before: p.before,
		After:  p.after,
	}
}

func (p *corsPolicy) before(c internal.Context) (*internal.Response, error) {
	r := c.Request()
	if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
		return nil, nil
	}
	origin := r.Header.Get("Origin")
	if origin == "" || !p.allowed(origin) {
		return nil, nil
	}

	res := internal.NoContent(http.StatusNoContent)
	p.apply(res.Header, origin)
	res.Header.Add("Vary", "Access-Control-Request-Method")
	res.Header.Add("Vary", "Access-Control-Request-Headers")
	res.Header.Set("Access-Control-Allow-Methods", p.allowMethods)
	res.Header.Set("Access-Control-Allow-Headers", p.allowHeaders)
	if p.cfg.MaxAge > 0 {
		res.Header.Set("Access-Control-Max-Age", p.maxAge)
	}
	return res, nil
}

func (p *corsPolicy) after(c internal.Context, res *internal.Response) (*internal.Response, error) {
	origin := c.Header("Origin")
	if origin == "" || !p.allowed(origin) {
		return res, nil
	}
	res = res.Clone()
	p.apply(res.Header, origin)
	return res, nil
}

func (p *corsPolicy) apply(h http.Header, origin string) {
	h.Add("Vary", "Origin")
	if p.cfg.AllowCredentials || !p.hasWildcard {
		h.Set("Access-Control-Allow-Origin", origin)
	} else {
		h.Set("Access-Control-Allow-Origin", "*")
	}
	if p.cfg.AllowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if p.exposeHeaders != "" {
		h.Set("Access-Control-Expose-Headers", p.exposeHeaders)
	}
}

func (p *corsPolicy) allowed(origin string) bool {
	if p.cfg.AllowOriginFunc != nil {
		return p.cfg.AllowOriginFunc(origin)
	}
	if p.hasWildcard {
		return true
	}
	return slices.Contains(p.cfg.AllowOrigins, origin)
}
