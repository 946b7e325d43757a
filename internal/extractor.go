package internal

import (
	"net/http"
	"strings"
)

// ExtractorSource looks for a string in one place of the request.
// Empty strings count as missing.
type ExtractorSource = func(Context) (string, bool)

// Extractor asks its sources in order and keeps the first hit. Auth,
// rate limiting and custom middleware use it to locate tokens and keys.
//
//	token := internal.NewExtractor(FromBearerToken(), FromCookie("access_token"))
type Extractor struct {
	sources []ExtractorSource
}

func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract returns the first non-empty value.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func present(v string) (string, bool) {
	return v, v != ""
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	name = http.CanonicalHeaderKey(name)
	return func(c Context) (string, bool) { return present(c.Header(name)) }
}

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Query(name)) }
}

// FromParam reads a path parameter of the matched route.
func FromParam(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Param(name)) }
}

// FromCookie reads a cookie value.
func FromCookie(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, err := c.Cookie(name)
		if err != nil {
			return "", false
		}
		return present(v)
	}
}

// FromBody reads a string field from an object body. JSON, urlencoded and
// multipart bodies all qualify.
func FromBody(field string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, _ := BodyMap(c)[field].(string)
		return present(v)
	}
}

// FromBearerToken reads the credentials of an "Authorization: Bearer"
// header. The scheme is matched case-insensitively.
func FromBearerToken() ExtractorSource {
	const scheme = "bearer "
	return func(c Context) (string, bool) {
		h := c.Header("Authorization")
		if len(h) <= len(scheme) || !strings.EqualFold(h[:len(scheme)], scheme) {
			return "", false
		}
		return present(strings.TrimSpace(h[len(scheme):]))
	}
}
