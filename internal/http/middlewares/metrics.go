package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/audioserver/internal/metrics"
)

// WithMetrics registra duración, status e inflight por ruta. Usa el patrón
// de chi (p.ej. /audio/{audio_id}) para no explotar la cardinalidad.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metrics.InflightAdd(1)
			defer metrics.InflightAdd(-1)

			rec, _ := recorderFor(w)
			next.ServeHTTP(rec, r)

			metrics.ObserveHTTP(r.Method, routeLabel(r), rec.status, time.Since(start))
		})
	}
}

func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return metrics.NormalizePath(r.URL.Path)
}
