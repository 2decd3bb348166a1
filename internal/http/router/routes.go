package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	adminctrl "github.com/dropDatabas3/audioserver/internal/http/controllers/admin"
	audioctrl "github.com/dropDatabas3/audioserver/internal/http/controllers/audio"
	usersctrl "github.com/dropDatabas3/audioserver/internal/http/controllers/users"
	mw "github.com/dropDatabas3/audioserver/internal/http/middlewares"
)

// registerHealthRoutes: /readyz, /healthz y /metrics son públicos.
func registerHealthRoutes(r chi.Router, d Deps) {
	r.Get("/healthz", d.Controllers.Health.Healthz)
	r.Get("/readyz", d.Controllers.Health.Readyz)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}
}

// registerAuthRoutes: sin auth; rate limit por IP y respuestas no cacheables.
func registerAuthRoutes(r chi.Router, d Deps) {
	c := d.Controllers.Auth
	r.Route("/auth", func(r chi.Router) {
		r.Use(mw.WithNoStore())
		if d.Limiter != nil {
			r.Use(mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.Limiter, TrustProxy: d.TrustProxy}))
		}
		r.Get("/yandex", c.Redirect)
		r.Get("/yandex/callback", c.Callback)
		r.Post("/refresh", c.Refresh)
	})
}

func registerUsersRoutes(r chi.Router, c *usersctrl.UsersController, requireAuth mw.Middleware) {
	r.Route("/users", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/get_user_info/", c.Me)
		r.Get("/get_user_yaid/", c.Me)
		r.Patch("/change_user/", c.Update)
		r.Get("/get_audios_list/", c.ListAudio)
	})
}

func registerAudioRoutes(r chi.Router, c *audioctrl.AudioController, requireAuth mw.Middleware) {
	r.Route("/audio", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/upload/", c.Upload)
		r.Delete("/{audio_id}", c.Delete)
	})
}

// registerAdminRoutes: requiere sesión y superusuario leído del store.
func registerAdminRoutes(r chi.Router, c *adminctrl.AdminController, requireAuth, requireSuperuser mw.Middleware) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(requireAuth, requireSuperuser)
		r.Delete("/delete_user_by_admin/", c.DeleteUser)
	})
}
