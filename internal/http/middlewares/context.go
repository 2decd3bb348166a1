package middlewares

import (
	"context"

	"github.com/dropDatabas3/audioserver/internal/jwt"
)

type ctxKey string

const (
	ctxRequestIDKey ctxKey = "request_id"
	ctxSessionKey   ctxKey = "session"
)

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// WithSession inyecta el payload del access token validado.
func WithSession(ctx context.Context, p *jwt.Payload) context.Context {
	return context.WithValue(ctx, ctxSessionKey, p)
}

// GetRequestID obtiene el request ID del contexto.
// Retorna cadena vacía si no hay request ID.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}

// GetSession obtiene el payload inyectado por RequireAuth.
// Retorna nil si la ruta no está protegida.
func GetSession(ctx context.Context) *jwt.Payload {
	if v, ok := ctx.Value(ctxSessionKey).(*jwt.Payload); ok {
		return v
	}
	return nil
}

// GetYandexID atajo para GetSession(ctx).YandexID.
func GetYandexID(ctx context.Context) string {
	if p := GetSession(ctx); p != nil {
		return p.YandexID
	}
	return ""
}
