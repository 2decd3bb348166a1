package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	httperrors "github.com/dropDatabas3/audioserver/internal/http/errors"
	"github.com/dropDatabas3/audioserver/internal/metrics"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
	"github.com/dropDatabas3/audioserver/internal/rate"
)

// clientIP extrae la IP del cliente. Los headers X-Forwarded-For y X-Real-IP
// sólo se consideran con trustProxy: los fija el proxy propio, no el cliente.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
			parts := strings.Split(xf, ",")
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
		if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); xr != "" {
			return xr
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimitConfig configura el middleware de rate limiting.
type RateLimitConfig struct {
	Limiter rate.Limiter
	// TrustProxy toma la IP de X-Forwarded-For / X-Real-IP.
	TrustProxy bool
}

// WithRateLimit rechaza con 429 cuando la IP agotó su ventana; todas las rutas
// del grupo comparten el cupo. Si el limiter falla (p.ej. Redis caído) el
// request pasa.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, cfg.TrustProxy)
			res, err := cfg.Limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable",
					logger.Component("rate"),
					logger.Err(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			if res.Limit > 0 {
				h.Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
			}
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if res.WindowTTL > 0 {
				h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.WindowTTL).Unix(), 10))
			}

			if !res.Allowed {
				if res.RetryAfter > 0 {
					h.Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				}
				metrics.RecordRateLimited(metrics.NormalizePath(r.URL.Path))
				logger.From(r.Context()).Info("rate limited",
					logger.ClientIP(ip),
					logger.Int("hits", int(res.CurrentHits)),
				)
				httperrors.WriteError(w, httperrors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
