package middlewares

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/audioserver/internal/observability/logger"
)

// statusRecorder captura el status code y bytes escritos de la respuesta.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.status = http.StatusOK
		s.wroteHeader = true
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Unwrap permite a http.ResponseController llegar al writer original.
func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// recorderFor reutiliza el recorder de un middleware externo si ya existe.
func recorderFor(w http.ResponseWriter) (*statusRecorder, bool) {
	if rec, ok := w.(*statusRecorder); ok {
		return rec, false
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}, true
}

// WithLogging registra cada request con campos estructurados e inyecta un
// logger scoped (request_id, method, path) en el contexto.
//
// Ejemplo de log (prod):
//
//	{"level":"info","ts":"2024-01-15T15:04:05.000Z","msg":"request completed","request_id":"abc123","method":"GET","path":"/users/get_user_info/","status":200,"bytes":64,"duration_ms":3}
func WithLogging(trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := w.Header().Get("X-Request-ID")
			if requestID == "" {
				requestID = GetRequestID(r.Context())
			}

			reqLog := logger.L().With(
				logger.RequestID(requestID),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
			)
			ctx := logger.ToContext(r.Context(), reqLog)

			rec, _ := recorderFor(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			fields := []zap.Field{
				logger.Status(rec.status),
				logger.Bytes(rec.bytes),
				logger.ClientIP(clientIP(r, trustProxy)),
				logger.DurationMs(time.Since(start).Milliseconds()),
			}
			switch {
			case rec.status >= 500:
				reqLog.Error("request failed", fields...)
			case rec.status >= 400:
				reqLog.Warn("request completed with client error", fields...)
			default:
				reqLog.Info("request completed", fields...)
			}
		})
	}
}
