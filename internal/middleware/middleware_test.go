package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-catalog/internal/apperror"
	"github.com/iliyamo/movie-catalog/internal/auth"
	"github.com/iliyamo/movie-catalog/internal/config"
	"github.com/iliyamo/movie-catalog/internal/logger"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

type stubAuthenticator struct {
	claims utils.AccessClaims
	err    error
}

func (s stubAuthenticator) Authenticate(context.Context, string) (utils.AccessClaims, error) {
	return s.claims, s.err
}

func runJWT(t *testing.T, authn Authenticator, header string) (echo.Context, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := echo.New().NewContext(req, httptest.NewRecorder())
	err := JWTAuth(authn, logger.Discard())(func(echo.Context) error { return nil })(c)
	return c, err
}

func TestJWTAuthStoresIdentity(t *testing.T) {
	claims := utils.AccessClaims{UserID: 42, ID: "jti"}
	c, err := runJWT(t, stubAuthenticator{claims: claims}, "Bearer abc")
	require.NoError(t, err)

	id, ok := UserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)
	got, ok := Claims(c)
	assert.True(t, ok)
	assert.Equal(t, claims, got)
}

func TestJWTAuthRejects(t *testing.T) {
	cases := map[string]struct {
		header string
		err    error
		kind   apperror.Kind
	}{
		"missing header": {"", nil, apperror.KindUnauthenticated},
		"wrong scheme":   {"Basic abc", nil, apperror.KindUnauthenticated},
		"empty token":    {"Bearer ", nil, apperror.KindUnauthenticated},
		"invalid token":  {"Bearer abc", utils.ErrInvalidToken, apperror.KindUnauthenticated},
		"revoked token":  {"Bearer abc", auth.ErrRevokedToken, apperror.KindUnauthenticated},
		"store failure":  {"Bearer abc", errors.New("redis down"), apperror.KindInternal},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := runJWT(t, stubAuthenticator{err: tc.err}, tc.header)
			assert.True(t, apperror.IsKind(err, tc.kind), "got %v", err)
		})
	}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// asUser stands in for JWTAuth: the X-User header becomes the user id.
func asUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if v := c.Request().Header.Get("X-User"); v != "" {
			id, _ := strconv.ParseUint(v, 10, 64)
			c.Set(UserIDKey, id)
		}
		return next(c)
	}
}

// renderStatus is a minimal HTTPErrorHandler for tests in this package.
func renderStatus(err error, c echo.Context) {
	if ae, ok := apperror.As(err); ok {
		_ = c.NoContent(ae.Status())
		return
	}
	_ = c.NoContent(http.StatusInternalServerError)
}

func serve(e *echo.Echo, method, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if user != "" {
		req.Header.Set("X-User", user)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Minute,
		TTL: 10 * time.Minute, KeyStrategy: "user", Prefix: "rl",
	}
	e := echo.New()
	e.HTTPErrorHandler = renderStatus
	e.GET("/movies", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		asUser, NewTokenBucket(cfg, rdb, logger.Discard()))

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/movies", "1").Code)
	rec := serve(e, http.MethodGet, "/movies", "1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(e, http.MethodGet, "/movies", "1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// another user has its own bucket
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/movies", "2").Code)
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, logger.Discard())
	called := false
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	require.NoError(t, mw(func(echo.Context) error { called = true; return nil })(c))
	assert.True(t, called)
}

func TestTokenBucketInProcessWithoutRedis(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Minute,
		TTL: 10 * time.Minute, KeyStrategy: "user", Prefix: "rl",
	}
	e := echo.New()
	e.HTTPErrorHandler = renderStatus
	e.GET("/movies", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		asUser, NewTokenBucket(cfg, nil, logger.Discard()))

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/movies", "1").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/movies", "1").Code)

	rec := serve(e, http.MethodGet, "/movies", "1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retry, 0)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/movies", "2").Code)
}

func newCachedEcho(t *testing.T, rdb *redis.Client) (*echo.Echo, *int) {
	t.Helper()
	cfg := config.CacheConfig{
		Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Minute,
		Prefix: "cache", MaxBodyBytes: 1 << 20,
	}
	hits := 0
	version := 0
	e := echo.New()
	g := e.Group("", asUser, NewRedisCache(cfg, rdb, logger.Discard()))
	g.GET("/movies", func(c echo.Context) error {
		hits++
		return c.JSON(http.StatusOK, echo.Map{"version": version, "user": c.Get(UserIDKey)})
	})
	g.POST("/movies", func(c echo.Context) error {
		version++
		return c.NoContent(http.StatusCreated)
	})
	g.GET("/missing", func(c echo.Context) error {
		hits++
		return c.JSON(http.StatusNotFound, echo.Map{"success": false})
	})
	return e, &hits
}

func TestCacheServesRepeatedReads(t *testing.T) {
	_, rdb := newRedis(t)
	e, hits := newCachedEcho(t, rdb)

	first := serve(e, http.MethodGet, "/movies?page=1", "1")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := serve(e, http.MethodGet, "/movies?page=1", "1")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, *hits)

	// a different query or user is a different entry
	assert.Equal(t, "MISS", serve(e, http.MethodGet, "/movies?page=2", "1").Header().Get("X-Cache"))
	assert.Equal(t, "MISS", serve(e, http.MethodGet, "/movies?page=1", "2").Header().Get("X-Cache"))
}

func TestCacheNeverSharesEntriesBetweenUsers(t *testing.T) {
	_, rdb := newRedis(t)
	e, hits := newCachedEcho(t, rdb)

	first := serve(e, http.MethodGet, "/movies", "1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "HIT", serve(e, http.MethodGet, "/movies", "1").Header().Get("X-Cache"))

	other := serve(e, http.MethodGet, "/movies", "2")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"version":0,"user":2}`, other.Body.String())
	assert.JSONEq(t, `{"version":0,"user":1}`, first.Body.String())
	assert.Equal(t, 2, *hits)
}

func TestCacheInvalidatedByWrite(t *testing.T) {
	_, rdb := newRedis(t)
	e, hits := newCachedEcho(t, rdb)

	before := serve(e, http.MethodGet, "/movies", "1")
	assert.Equal(t, http.StatusCreated, serve(e, http.MethodPost, "/movies", "1").Code)
	after := serve(e, http.MethodGet, "/movies", "1")

	assert.Equal(t, "MISS", after.Header().Get("X-Cache"))
	assert.NotEqual(t, before.Body.String(), after.Body.String())
	assert.Equal(t, 2, *hits)
}

func TestCacheSkipsErrorsAndGuests(t *testing.T) {
	_, rdb := newRedis(t)
	e, hits := newCachedEcho(t, rdb)

	serve(e, http.MethodGet, "/missing", "1")
	serve(e, http.MethodGet, "/missing", "1")
	assert.Equal(t, 2, *hits)

	guest := serve(e, http.MethodGet, "/movies", "")
	assert.Empty(t, guest.Header().Get("X-Cache"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)
	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, got)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload([]byte{1, 2})
	assert.False(t, ok)
}
