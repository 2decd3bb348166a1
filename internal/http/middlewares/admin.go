package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
	httperrors "github.com/dropDatabas3/audioserver/internal/http/errors"
	"github.com/dropDatabas3/audioserver/internal/http/services/authz"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
)

// SuperuserChecker lee el flag superuser fresco del store (implementado por *authz.Guard).
type SuperuserChecker interface {
	RequireSuperuser(ctx context.Context, subjectID string) (*repository.User, error)
}

// RequireSuperuser exige que el sujeto de la sesión sea superusuario.
// Debe usarse después de RequireAuth.
func RequireSuperuser(guard SuperuserChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := GetYandexID(r.Context())
			if subject == "" {
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}

			if _, err := guard.RequireSuperuser(r.Context(), subject); err != nil {
				if errors.Is(err, authz.ErrForbidden) {
					httperrors.WriteError(w, httperrors.ErrSuperuserRequired)
					return
				}
				logger.From(r.Context()).Error("superuser check failed", logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
