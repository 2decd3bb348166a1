package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/audioserver/internal/config"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Driver = "memory"
	cfg.Audio.Root = t.TempDir()
	cfg.JWT.Secret = "wiring-secret"
	cfg.JWT.AccessTTLHours = 1
	cfg.JWT.RefreshTTLDays = 1
	cfg.Yandex.ClientID = "abc123"
	cfg.Yandex.ClientSecret = "s"
	cfg.App.Version = "test"
	return cfg
}

func readyz(t *testing.T, h http.Handler) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestBuild_Memory(t *testing.T) {
	cfg := memoryConfig(t)
	require.NoError(t, cfg.Validate())

	h, cleanup, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cleanup()) })

	code, body := readyz(t, h)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ready", body["status"])

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/yandex", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBuild_RedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := memoryConfig(t)
	cfg.Cache.Kind = "redis"
	cfg.Cache.Redis.Addr = mr.Addr()

	h, cleanup, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	code, body := readyz(t, h)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ready", body["status"])

	// redis no es crítico: sin redis el servicio queda degradado pero responde
	mr.Close()
	code, body = readyz(t, h)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "degraded", body["status"])
}

func TestBuild_UnknownDriver(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Storage.Driver = "sqlite"
	_, _, err := Build(context.Background(), cfg)
	require.Error(t, err)
}
