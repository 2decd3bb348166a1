package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Codec firma y valida los tokens de sesión (HS256, un único secreto).
// Es inmutable después de NewCodec y seguro para uso concurrente.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option configura el Codec.
type Option func(*Codec)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec crea el codec. El secreto no puede estar vacío.
func NewCodec(secret string, accessTTL, refreshTTL time.Duration, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("jwt: empty signing secret")
	}
	c := &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// IssuePair emite access y refresh para la identidad. Ambos difieren sólo en
// "type" y exp.
func (c *Codec) IssuePair(id Identity) (Pair, error) {
	now := c.now()
	access, err := c.sign(id, KindAccess, now.Add(c.accessTTL))
	if err != nil {
		return Pair{}, err
	}
	refresh, err := c.sign(id, KindRefresh, now.Add(c.refreshTTL))
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (c *Codec) sign(id Identity, kind Kind, exp time.Time) (string, error) {
	claims := SessionClaims{
		YandexID: id.YandexID,
		Username: id.Username,
		Email:    id.Email,
		Type:     kind,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}
