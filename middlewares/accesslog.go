package middlewares

import (
	"log/slog"
	"time"

	"github.com/dumbdev/katal/internal"
)

type accessLogStartKey struct{}

// AccessLog returns middleware that logs one line per request, error
// handler responses included. 5xx responses log at error level, 4xx at
// warn, the rest at info.
func AccessLog() internal.Middleware {
	return internal.Middleware{
		Before: func(c internal.Context) (*internal.Response, error) {
			c.Set(accessLogStartKey{}, time.Now())
			return nil, nil
		},
		Done: func(c internal.Context, res *internal.Response) {
			req := c.Request()
			status := statusOf(res)
			attrs := []any{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", status),
				slog.String("remote_ip", ClientIP(c)),
			}
			if res != nil {
				attrs = append(attrs, slog.Int("bytes", len(res.Body)))
			}
			if r := c.Route(); r != nil {
				attrs = append(attrs, slog.String("route", r.Path))
			}
			if start, ok := c.Get(accessLogStartKey{}).(time.Time); ok {
				attrs = append(attrs, slog.Duration("duration", time.Since(start)))
			}

			switch {
			case status >= 500:
				c.LogError("request completed", attrs...)
			case status >= 400:
				c.LogWarn("request completed", attrs...)
			default:
				c.LogInfo("request completed", attrs...)
			}
		},
	}
}
