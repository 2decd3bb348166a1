// Package router arma la superficie HTTP del servicio sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/audioserver/internal/http/controllers"
	httperrors "github.com/dropDatabas3/audioserver/internal/http/errors"
	mw "github.com/dropDatabas3/audioserver/internal/http/middlewares"
	"github.com/dropDatabas3/audioserver/internal/rate"
)

// Deps dependencias del router.
type Deps struct {
	Controllers *controllers.Controllers

	// Middlewares
	Resolver  mw.SessionResolver  // valida el access token
	Superuser mw.SuperuserChecker // gate de /admin
	Limiter   rate.Limiter        // opcional: nil deshabilita el rate limit de /auth

	// TrustProxy toma la IP del cliente de X-Forwarded-For (rate limit y logs).
	TrustProxy bool

	// Metrics handler de Prometheus; nil = sin /metrics
	Metrics http.Handler
}

// New construye el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRequestID(),
		mw.WithRecover(),
		mw.WithLogging(d.TrustProxy),
		mw.WithMetrics(),
		mw.WithSecurityHeaders(),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	requireAuth := mw.RequireAuth(d.Resolver)

	registerHealthRoutes(r, d)
	registerAuthRoutes(r, d)
	registerUsersRoutes(r, d.Controllers.Users, requireAuth)
	registerAudioRoutes(r, d.Controllers.Audio, requireAuth)
	registerAdminRoutes(r, d.Controllers.Admin, requireAuth, mw.RequireSuperuser(d.Superuser))

	return r
}
