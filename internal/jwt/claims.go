package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Kind distingue access de refresh. Viaja en el claim "type".
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

func (k Kind) valid() bool { return k == KindAccess || k == KindRefresh }

var (
	// ErrExpiredToken el token pasó su exp.
	ErrExpiredToken = errors.New("token has expired")
	// ErrMalformedToken firma, estructura o claims inválidos.
	ErrMalformedToken = errors.New("invalid token")
	// ErrWrongTokenKind se presentó un refresh donde se espera un access (o viceversa).
	ErrWrongTokenKind = errors.New("wrong token kind")
)

// Identity son los datos del sujeto que viajan firmados en ambos tokens.
type Identity struct {
	YandexID string
	Username string
	Email    string
}

// SessionClaims es el payload firmado. exp sale de RegisteredClaims.
type SessionClaims struct {
	YandexID string `json:"yandex_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Type     Kind   `json:"type"`
	jwtv5.RegisteredClaims
}

// Payload es el resultado de validar un token.
type Payload struct {
	Identity
	Kind      Kind
	ExpiresAt time.Time
}

// Pair es el par emitido en login y refresh.
type Pair struct {
	AccessToken  string
	RefreshToken string
}
