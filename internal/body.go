package internal

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
)

const (
	defaultMaxBodyBytes       = 10 << 20 // 10MB
	defaultMaxMultipartMemory = 32 << 20 // 32MB
)

// parseBody decodes the request body by media type.
//
//   - application/json: any JSON value (objects become map[string]any)
//   - application/x-www-form-urlencoded: map[string]any of strings
//   - multipart/form-data: map[string]any of strings and *multipart.FileHeader
//
// Repeated form keys keep the last value. Any other media type, an empty
// body or a decode failure yields nil. Failures are logged, never returned.
func parseBody(c Context) any {
	req := c.Request()
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}

	ct := req.Header.Get("Content-Type")
	if ct == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		c.LogWarn("invalid content type", slog.String("content_type", ct), slog.Any("error", err))
		return nil
	}

	switch mediaType {
	case "application/json":
		var v any
		if err := json.NewDecoder(req.Body).Decode(&v); err != nil {
			if !errors.Is(err, io.EOF) {
				c.LogWarn("failed to parse json body", slog.Any("error", err))
			}
			return nil
		}
		return v

	case "application/x-www-form-urlencoded":
		if err := req.ParseForm(); err != nil {
			c.LogWarn("failed to parse form body", slog.Any("error", err))
			return nil
		}
		return flattenValues(req.PostForm, nil)

	case "multipart/form-data":
		if err := req.ParseMultipartForm(defaultMaxMultipartMemory); err != nil {
			c.LogWarn("failed to parse multipart body", slog.Any("error", err))
			return nil
		}
		body := flattenValues(req.MultipartForm.Value, nil)
		for key, files := range req.MultipartForm.File {
			if len(files) > 0 {
				body[key] = files[len(files)-1]
			}
		}
		return body
	}

	return nil
}

func flattenValues(values url.Values, into map[string]any) map[string]any {
	if into == nil {
		into = make(map[string]any, len(values))
	}
	for key, vs := range values {
		if len(vs) > 0 {
			into[key] = vs[len(vs)-1]
		}
	}
	return into
}
