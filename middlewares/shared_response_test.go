package middlewares_test

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumbdev/katal/internal"
	"github.com/dumbdev/katal/middlewares"
)

func TestAfterHooks_LeaveHandlerResponseUntouched(t *testing.T) {
	t.Parallel()

	pong := internal.Text(http.StatusOK, "pong")
	pristine := pong.Header.Clone()

	limiter, err := middlewares.NewLocalLimiter(middlewares.RateLimitConfig{Requests: 1000, Window: time.Minute})
	require.NoError(t, err)

	app := internal.New(
		internal.WithMiddleware(
			middlewares.RequestID(),
			middlewares.CORS(),
			middlewares.RateLimit(limiter),
		),
		internal.WithRoutes(func(r internal.Router) {
			r.GET("/ping", func(internal.Context) (any, error) { return pong, nil })
		}),
	)

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			w := do(app, http.MethodGet, "/ping", map[string]string{"Origin": "http://example.com"})
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, []string{"Origin"}, w.Header().Values("Vary"))
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		})
	}
	wg.Wait()

	require.Equal(t, pristine, pong.Header)
	require.Empty(t, pong.Header.Values("Vary"))
}
