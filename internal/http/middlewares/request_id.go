package middlewares

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// maxRequestIDLen descarta IDs de cliente absurdamente largos.
const maxRequestIDLen = 128

// WithRequestID genera o propaga un Request ID único para cada request.
// Si el cliente envía X-Request-ID, lo usa. Si no, genera uno nuevo.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
			if rid == "" || len(rid) > maxRequestIDLen {
				rid = uuid.NewString()
			}

			w.Header().Set("X-Request-ID", rid)
			next.ServeHTTP(w, r.WithContext(setRequestID(r.Context(), rid)))
		})
	}
}
