package internal

import (
	"regexp"
	"strings"

	"github.com/dumbdev/katal/pkg/validator"
)

// Route is a registered method and path bound to a controller.
type Route struct {
	pattern    *regexp.Regexp
	controller Controller
	schema     validator.Schema
	Method     string
	Path       string
	params     []string
	middleware []string
}

// RouteInfo describes a registered route for introspection.
type RouteInfo struct {
	Method     string   `json:"method"`
	Path       string   `json:"path"`
	Params     []string `json:"params,omitempty"`
	Middleware []string `json:"middleware,omitempty"`
	Validated  bool     `json:"validated"`
}

func newRoute(method, path string, ctrl Controller, middleware []string, schema validator.Schema) *Route {
	canonical := normalizePath(path)
	pattern, params := compilePath(canonical)
	return &Route{
		Method:     strings.ToUpper(method),
		Path:       canonical,
		pattern:    pattern,
		params:     params,
		controller: ctrl,
		middleware: middleware,
		schema:     schema,
	}
}

// Params returns the parameter names in path order.
func (r *Route) Params() []string {
	return append([]string(nil), r.params...)
}

// Middleware returns the named middleware applied to the route.
func (r *Route) Middleware() []string {
	return append([]string(nil), r.middleware...)
}

// Schema returns the validation schema, or nil.
func (r *Route) Schema() validator.Schema {
	return r.schema
}

// Matches reports whether path (already normalized) matches the route.
func (r *Route) Matches(path string) bool {
	return r.pattern.MatchString(path)
}

// ExtractParams maps parameter names to the segments captured from path.
// A parameter with no capture maps to "".
func (r *Route) ExtractParams(path string) map[string]string {
	params := make(map[string]string, len(r.params))
	m := r.pattern.FindStringSubmatch(normalizePath(path))
	for i, name := range r.params {
		if i+1 < len(m) {
			params[name] = m[i+1]
		} else {
			params[name] = ""
		}
	}
	return params
}

func (r *Route) info() RouteInfo {
	return RouteInfo{
		Method:     r.Method,
		Path:       r.Path,
		Params:     r.Params(),
		Middleware: r.Middleware(),
		Validated:  r.schema != nil,
	}
}

// normalizePath drops empty segments so "//a/b/" becomes "/a/b".
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	kept := segments[:0]
	for _, s := range segments {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return "/" + strings.Join(kept, "/")
}

// compilePath turns a canonical path into an anchored pattern. A ":name"
// segment captures one non-empty segment; other segments match literally.
func compilePath(canonical string) (*regexp.Regexp, []string) {
	if canonical == "/" {
		return regexp.MustCompile(`^/$`), nil
	}

	var (
		b      strings.Builder
		params []string
	)
	b.WriteString("^")
	for _, seg := range strings.Split(strings.TrimPrefix(canonical, "/"), "/") {
		b.WriteString("/")
		if name, ok := strings.CutPrefix(seg, ":"); ok && name != "" {
			params = append(params, name)
			b.WriteString("([^/]+)")
			continue
		}
		b.WriteString(regexp.QuoteMeta(seg))
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String()), params
}
