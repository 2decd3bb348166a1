// Package services agrupa los services HTTP y resuelve sus dependencias.
package services

import (
	"github.com/dropDatabas3/audioserver/internal/domain/repository"
	"github.com/dropDatabas3/audioserver/internal/http/services/audio"
	"github.com/dropDatabas3/audioserver/internal/http/services/auth"
	"github.com/dropDatabas3/audioserver/internal/http/services/authz"
	"github.com/dropDatabas3/audioserver/internal/http/services/health"
	"github.com/dropDatabas3/audioserver/internal/http/services/users"
	"github.com/dropDatabas3/audioserver/internal/jwt"
	"github.com/dropDatabas3/audioserver/internal/storage/audiofs"
)

// Deps infraestructura compartida.
type Deps struct {
	Store    repository.Store
	Provider auth.Provider
	Codec    *jwt.Codec
	Files    *audiofs.Store

	// ─── Health Check ───
	HealthDeps health.Deps
}

// Services todos los services del servidor.
type Services struct {
	Auth   auth.Service
	Users  users.Service
	Audio  audio.Service
	Health health.Service
	Guard  *authz.Guard
}

func New(d Deps) *Services {
	guard := authz.NewGuard(d.Store.Users())
	hd := d.HealthDeps
	if hd.Signer == nil {
		hd.Signer = d.Codec
	}
	if hd.DBCheck == nil {
		hd.DBCheck = d.Store.Ping
	}
	return &Services{
		Auth: auth.NewService(auth.Deps{
			Provider: d.Provider,
			Codec:    d.Codec,
			Users:    d.Store.Users(),
		}),
		Users: users.NewService(users.Deps{
			Users: d.Store.Users(),
			Audio: d.Store.Audio(),
			Guard: guard,
			Files: d.Files,
		}),
		Audio: audio.NewService(audio.Deps{
			Audio: d.Store.Audio(),
			Files: d.Files,
			Guard: guard,
		}),
		Health: health.NewService(hd),
		Guard:  guard,
	}
}
