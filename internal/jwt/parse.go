package jwt

import (
	"errors"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Validate verifica firma, exp y que el "type" sea el esperado.
// Retorna ErrExpiredToken, ErrMalformedToken o ErrWrongTokenKind.
func (c *Codec) Validate(token string, expected Kind) (*Payload, error) {
	if token == "" {
		return nil, ErrMalformedToken
	}

	var claims SessionClaims
	_, err := jwtv5.ParseWithClaims(token, &claims,
		func(*jwtv5.Token) (any, error) { return c.secret, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(c.now),
	)
	if err != nil {
		// La firma se verifica antes que las claims: un exp vencido sólo se
		// reporta para tokens firmados con nuestro secreto.
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrMalformedToken
	}

	if !claims.Type.valid() || claims.YandexID == "" {
		return nil, ErrMalformedToken
	}
	if claims.Type != expected {
		return nil, ErrWrongTokenKind
	}

	return &Payload{
		Identity: Identity{
			YandexID: claims.YandexID,
			Username: claims.Username,
			Email:    claims.Email,
		},
		Kind:      claims.Type,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
