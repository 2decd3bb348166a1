// Package auth contiene el service de autenticación: login con Yandex,
// refresh del par de tokens y resolución del usuario actual.
package auth

import (
	"context"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
	"github.com/dropDatabas3/audioserver/internal/jwt"
	"github.com/dropDatabas3/audioserver/internal/oauth/yandex"
)

//go:generate mockgen -destination=mocks/provider.go -package=mocks . Provider

// Provider es el identity provider (implementado por *yandex.Client).
type Provider interface {
	AuthorizeURL() string
	ExchangeCode(ctx context.Context, code string) (*yandex.TokenResponse, error)
	FetchProfile(ctx context.Context, accessToken string) (*yandex.Profile, error)
}

// TokenCodec emite y valida los tokens de sesión (implementado por *jwt.Codec).
type TokenCodec interface {
	IssuePair(id jwt.Identity) (jwt.Pair, error)
	Validate(token string, expected jwt.Kind) (*jwt.Payload, error)
}

// Service define las operaciones de autenticación.
type Service interface {
	// AuthorizationURL URL de consentimiento del provider. No hace I/O.
	AuthorizationURL() string
	// CompleteLogin canjea el code, lee el perfil, asegura el usuario local y
	// emite el par de tokens.
	CompleteLogin(ctx context.Context, code string) (*LoginResult, error)
	// Refresh valida un refresh token y emite un par nuevo con las mismas claims.
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	// ResolveCurrentUser valida un access token.
	ResolveCurrentUser(ctx context.Context, accessToken string) (*jwt.Payload, error)
}

// LoginResult resultado de login y refresh.
type LoginResult struct {
	YandexID string
	Pair     jwt.Pair
	// Created sólo en login: el usuario local se creó en esta llamada.
	Created bool
}

// Deps dependencias del service.
type Deps struct {
	Provider Provider
	Codec    TokenCodec
	Users    repository.UserRepository
}
