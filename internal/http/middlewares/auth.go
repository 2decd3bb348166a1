package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/audioserver/internal/http/errors"
	"github.com/dropDatabas3/audioserver/internal/jwt"
	"github.com/dropDatabas3/audioserver/internal/metrics"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
)

// SessionResolver valida un access token (implementado por el service auth).
type SessionResolver interface {
	ResolveCurrentUser(ctx context.Context, accessToken string) (*jwt.Payload, error)
}

// bearerToken extrae el token de Authorization: Bearer <token>.
func bearerToken(r *http.Request) (string, bool) {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < len("bearer ") || !strings.EqualFold(ah[:len("bearer ")], "bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(ah[len("bearer "):])
	return raw, raw != ""
}

// RequireAuth valida el access token y guarda el payload en el contexto.
// Sin header => 401 "Not authenticated"; expirado => "Token has expired";
// firma inválida, malformado o refresh usado como access => "Invalid token".
func RequireAuth(resolver SessionResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				metrics.RecordTokenRejection("missing")
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}

			payload, err := resolver.ResolveCurrentUser(r.Context(), raw)
			if err != nil {
				reason, appErr := tokenError(err)
				metrics.RecordTokenRejection(reason)
				logger.From(r.Context()).Debug("token rejected",
					logger.Layer("middleware"),
					logger.String("reason", reason),
				)
				httperrors.WriteError(w, appErr)
				return
			}

			ctx := WithSession(r.Context(), payload)
			ctx = logger.With(ctx, logger.YandexID(payload.YandexID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenError(err error) (string, *httperrors.AppError) {
	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		return "expired", httperrors.ErrTokenExpired
	case errors.Is(err, jwt.ErrWrongTokenKind):
		return "wrong_kind", httperrors.ErrTokenInvalid
	case errors.Is(err, jwt.ErrMalformedToken):
		return "malformed", httperrors.ErrTokenInvalid
	default:
		return "error", httperrors.ErrTokenInvalid.WithCause(err)
	}
}
