// Package controllers agrupa los controllers HTTP. Es el composition root
// entre services y router.
package controllers

import (
	"github.com/dropDatabas3/audioserver/internal/http/controllers/admin"
	"github.com/dropDatabas3/audioserver/internal/http/controllers/audio"
	"github.com/dropDatabas3/audioserver/internal/http/controllers/auth"
	"github.com/dropDatabas3/audioserver/internal/http/controllers/health"
	"github.com/dropDatabas3/audioserver/internal/http/controllers/users"
	"github.com/dropDatabas3/audioserver/internal/http/services"
)

// Controllers agregador de todos los controllers.
type Controllers struct {
	Auth   *auth.AuthController
	Users  *users.UsersController
	Audio  *audio.AudioController
	Admin  *admin.AdminController
	Health *health.HealthController
}

// New crea los controllers a partir de los services.
func New(s *services.Services, maxUploadBytes int64) *Controllers {
	return &Controllers{
		Auth:   auth.NewAuthController(s.Auth),
		Users:  users.NewUsersController(s.Users),
		Audio:  audio.NewAudioController(s.Audio, maxUploadBytes),
		Admin:  admin.NewAdminController(s.Users),
		Health: health.NewHealthController(s.Health),
	}
}
