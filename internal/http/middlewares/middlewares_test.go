package middlewares

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
	"github.com/dropDatabas3/audioserver/internal/http/services/authz"
	"github.com/dropDatabas3/audioserver/internal/jwt"
	"github.com/dropDatabas3/audioserver/internal/rate"
	"github.com/dropDatabas3/audioserver/internal/store/memory"
)

type codecResolver struct{ c *jwt.Codec }

func (r codecResolver) ResolveCurrentUser(_ context.Context, tok string) (*jwt.Payload, error) {
	return r.c.Validate(tok, jwt.KindAccess)
}

func newCodec(t *testing.T, now func() time.Time) *jwt.Codec {
	t.Helper()
	c, err := jwt.NewCodec("test-secret", time.Hour, 24*time.Hour, jwt.WithClock(now))
	require.NoError(t, err)
	return c
}

func detailOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Detail
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(GetYandexID(r.Context())))
})

func TestRequireAuth(t *testing.T) {
	now := time.Now()
	codec := newCodec(t, func() time.Time { return now })
	h := RequireAuth(codecResolver{codec})(okHandler)

	pair, err := codec.IssuePair(jwt.Identity{YandexID: "42", Username: "u"})
	require.NoError(t, err)

	do := func(auth string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/users/get_user_info/", nil)
		if auth != "" {
			r.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	w := do("Bearer " + pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "42", w.Body.String())

	w = do("bearer " + pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = do("")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Not authenticated", detailOf(t, w))
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = do("Basic abc")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Not authenticated", detailOf(t, w))

	w = do("Bearer test_token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Invalid token", detailOf(t, w))

	w = do("Bearer " + pair.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Invalid token", detailOf(t, w))

	now = now.Add(2 * time.Hour)
	w = do("Bearer " + pair.AccessToken)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Token has expired", detailOf(t, w))
}

func TestRequireSuperuser(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	for _, id := range []string{"plain", "root"} {
		_, _, err := s.Users().EnsureByYandexID(ctx, repository.EnsureUserInput{YandexID: id})
		require.NoError(t, err)
	}
	require.NoError(t, s.Users().SetSuperuser(ctx, "root", true))
	h := RequireSuperuser(authz.NewGuard(s.Users()))(okHandler)

	do := func(subject string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodDelete, "/admin/delete_user_by_admin/", nil)
		if subject != "" {
			r = r.WithContext(WithSession(r.Context(), &jwt.Payload{Identity: jwt.Identity{YandexID: subject}}))
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	require.Equal(t, http.StatusOK, do("root").Code)

	w := do("plain")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Only superuser can do that", detailOf(t, w))

	require.Equal(t, http.StatusForbidden, do("ghost").Code)
	require.Equal(t, http.StatusUnauthorized, do("").Code)
}

func TestWithRateLimit(t *testing.T) {
	h := WithRateLimit(RateLimitConfig{
		Limiter: rate.NewMemoryLimiter(2, time.Minute),
	})(okHandler)

	do := func(path, ip string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		r.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	require.Equal(t, http.StatusOK, do("/auth/yandex", "10.0.0.1").Code)
	w := do("/auth/refresh", "10.0.0.1")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	// el cupo es por IP, compartido entre rutas
	w = do("/auth/yandex/callback", "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))

	// otra IP tiene su propio cupo
	require.Equal(t, http.StatusOK, do("/auth/yandex", "10.0.0.2").Code)
}

func TestWithRateLimit_IgnoresForwardedHeadersByDefault(t *testing.T) {
	h := WithRateLimit(RateLimitConfig{
		Limiter: rate.NewMemoryLimiter(1, time.Minute),
	})(okHandler)

	allowed := 0
	for i := 0; i < 20; i++ {
		r := httptest.NewRequest(http.MethodGet, "/auth/yandex", nil)
		r.RemoteAddr = "1.2.3.4:5555"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		r.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code == http.StatusOK {
			allowed++
		}
	}
	require.Equal(t, 1, allowed)
}

func TestWithRateLimit_TrustProxy(t *testing.T) {
	h := WithRateLimit(RateLimitConfig{
		Limiter:    rate.NewMemoryLimiter(1, time.Minute),
		TrustProxy: true,
	})(okHandler)

	do := func(forwarded string) int {
		r := httptest.NewRequest(http.MethodGet, "/auth/yandex", nil)
		r.RemoteAddr = "10.0.0.254:5555"
		r.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	// detrás del proxy propio cada cliente real tiene su cupo
	require.Equal(t, http.StatusOK, do("203.0.113.1"))
	require.Equal(t, http.StatusOK, do("203.0.113.2"))
	require.Equal(t, http.StatusTooManyRequests, do("203.0.113.1, 10.0.0.254"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	require.Equal(t, "192.0.2.1", clientIP(r, false))
	require.Equal(t, "192.0.2.1", clientIP(r, true))

	r.Header.Set("X-Real-IP", "198.51.100.7")
	require.Equal(t, "192.0.2.1", clientIP(r, false))
	require.Equal(t, "198.51.100.7", clientIP(r, true))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	require.Equal(t, "192.0.2.1", clientIP(r, false))
	require.Equal(t, "203.0.113.9", clientIP(r, true))

	r.RemoteAddr = "not-a-hostport"
	require.Equal(t, "not-a-hostport", clientIP(r, false))
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := WithRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	require.Equal(t, seen, w.Header().Get("X-Request-ID"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, "abc", seen)
}

func TestWithRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), WithRequestID(), WithRecover(), WithLogging(false))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "h")
	}), mw("a"), mw("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "h"}, order)
}
