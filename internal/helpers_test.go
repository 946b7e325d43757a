package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumbdev/katal/internal"
	"github.com/dumbdev/katal/pkg/container"
)

type ctxKey string

func TestContext_Accessors(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/items/5?tag=a&tag=b&limit=10", nil)
	req.Header.Set("X-Tenant", "acme")
	req.AddCookie(&http.Cookie{Name: "session", Value: "s1"})

	c := internal.NewContext(req, nil, nil, map[string]string{"id": "5"}, map[string]any{"k": "v"})

	assert.Equal(t, "5", c.Param("id"))
	assert.Empty(t, c.Param("missing"))
	assert.Equal(t, "a", c.Query("tag"))
	assert.Equal(t, []string{"a", "b"}, c.QueryParams()["tag"])
	assert.Equal(t, "fallback", c.QueryDefault("missing", "fallback"))
	assert.Equal(t, "acme", c.Header("X-Tenant"))
	assert.Nil(t, c.Route())
	assert.NotNil(t, c.Container())
	assert.NotNil(t, c.Logger())

	v, err := c.Cookie("session")
	require.NoError(t, err)
	assert.Equal(t, "s1", v)
	_, err = c.Cookie("nope")
	require.ErrorIs(t, err, http.ErrNoCookie)

	params := c.Params()
	params["id"] = "changed"
	assert.Equal(t, "5", c.Param("id"))

	c.Set(ctxKey("user"), "ada")
	assert.Equal(t, "ada", c.Get(ctxKey("user")))
	assert.Equal(t, "ada", c.Value(ctxKey("user")))
	assert.Equal(t, "ada", c.Request().Context().Value(ctxKey("user")))
	assert.Nil(t, c.Get(ctxKey("other")))
}

func TestTypedHelpers(t *testing.T) {
	t.Parallel()

	c := internal.NewContext(
		httptest.NewRequest(http.MethodGet, "/?page=2&ratio=0.5&debug=true&bad=x", nil),
		nil, nil,
		map[string]string{"id": "42", "name": "ada"},
		map[string]any{"email": "a@b.co"},
	)

	assert.Equal(t, 42, internal.Param[int](c, "id"))
	assert.Equal(t, int64(42), internal.Param[int64](c, "id"))
	assert.Equal(t, "ada", internal.Param[string](c, "name"))
	assert.Equal(t, 0, internal.Param[int](c, "name"))

	type userID int64
	assert.Equal(t, userID(42), internal.Param[userID](c, "id"))

	assert.Equal(t, 2, internal.Query[int](c, "page"))
	assert.InDelta(t, 0.5, internal.Query[float64](c, "ratio"), 1e-9)
	assert.True(t, internal.Query[bool](c, "debug"))
	assert.Equal(t, 7, internal.QueryDefault(c, "bad", 7))
	assert.Equal(t, 20, internal.QueryDefault(c, "limit", 20))

	assert.Equal(t, map[string]any{"email": "a@b.co"}, internal.BodyMap(c))

	c.Set(ctxKey("n"), 3)
	assert.Equal(t, 3, internal.ContextValue[int](c, ctxKey("n")))
	assert.Empty(t, internal.ContextValue[string](c, ctxKey("n")))
}

func TestBodyMap_NonObject(t *testing.T) {
	t.Parallel()

	assert.Nil(t, internal.BodyMap(testContext(http.MethodPost, "/", nil, []any{1.0})))
	assert.Nil(t, internal.BodyMap(testContext(http.MethodPost, "/", nil, nil)))
}

func TestService(t *testing.T) {
	t.Parallel()

	ctr := container.New()
	ctr.Singleton("n", container.Value(5))
	c := internal.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), nil, ctr, nil, nil)

	n, err := internal.Service[int](c, "n")
	require.NoError(t, err)
	require.Equal(t, 5, n)

	_, err = internal.Service[string](c, "n")
	require.ErrorIs(t, err, container.ErrTypeMismatch)

	_, err = internal.Service[int](c, "missing")
	require.True(t, container.IsNotFound(err))
}

func TestExtractor(t *testing.T) {
	t.Parallel()

	newCtx := func(mod func(r *http.Request), params map[string]string, body any) internal.Context {
		req := httptest.NewRequest(http.MethodGet, "/?token=from-query", nil)
		if mod != nil {
			mod(req)
		}
		return internal.NewContext(req, nil, nil, params, body)
	}

	t.Run("first hit wins", func(t *testing.T) {
		t.Parallel()

		ex := internal.NewExtractor(
			internal.FromHeader("X-Token"),
			internal.FromQuery("token"),
		)
		c := newCtx(func(r *http.Request) { r.Header.Set("X-Token", "from-header") }, nil, nil)
		v, ok := ex.Extract(c)
		require.True(t, ok)
		require.Equal(t, "from-header", v)

		v, ok = ex.Extract(newCtx(nil, nil, nil))
		require.True(t, ok)
		require.Equal(t, "from-query", v)
	})

	t.Run("all sources miss", func(t *testing.T) {
		t.Parallel()

		ex := internal.NewExtractor(internal.FromCookie("tok"), internal.FromParam("tok"), internal.FromBody("tok"))
		_, ok := ex.Extract(newCtx(nil, nil, nil))
		require.False(t, ok)
	})

	t.Run("cookie param and body", func(t *testing.T) {
		t.Parallel()

		c := newCtx(func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "tok", Value: "c"})
		}, map[string]string{"tok": "p"}, map[string]any{"tok": "b", "num": 1.0})

		v, _ := internal.FromCookie("tok")(c)
		assert.Equal(t, "c", v)
		v, _ = internal.FromParam("tok")(c)
		assert.Equal(t, "p", v)
		v, _ = internal.FromBody("tok")(c)
		assert.Equal(t, "b", v)
		_, ok := internal.FromBody("num")(c)
		assert.False(t, ok)
	})

	t.Run("bearer token", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			header string
			want   string
			ok     bool
		}{
			{header: "Bearer abc", want: "abc", ok: true},
			{header: "bearer abc", want: "abc", ok: true},
			{header: "Bearer ", ok: false},
			{header: "Basic abc", ok: false},
			{header: "", ok: false},
		}
		for _, tt := range tests {
			c := newCtx(func(r *http.Request) { r.Header.Set("Authorization", tt.header) }, nil, nil)
			v, ok := internal.FromBearerToken()(c)
			assert.Equal(t, tt.ok, ok, tt.header)
			assert.Equal(t, tt.want, v, tt.header)
		}
	})
}
