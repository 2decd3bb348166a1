package jwt

import (
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var ident = Identity{YandexID: "12345", Username: "Ivan Petrov", Email: "ivan@yandex.ru"}

func newTestCodec(t *testing.T, now func() time.Time) *Codec {
	t.Helper()
	c, err := NewCodec("test-secret", 2*time.Hour, 7*24*time.Hour, WithClock(now))
	require.NoError(t, err)
	return c
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec("", time.Hour, time.Hour)
	require.Error(t, err)
}

func TestIssuePair_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCodec(t, func() time.Time { return now })

	pair, err := c.IssuePair(ident)
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	require.Len(t, strings.Split(pair.AccessToken, "."), 3)

	p, err := c.Validate(pair.AccessToken, KindAccess)
	require.NoError(t, err)
	require.Equal(t, ident, p.Identity)
	require.Equal(t, KindAccess, p.Kind)
	require.Equal(t, now.Add(2*time.Hour).Unix(), p.ExpiresAt.Unix())

	p, err = c.Validate(pair.RefreshToken, KindRefresh)
	require.NoError(t, err)
	require.Equal(t, ident, p.Identity)
	require.Equal(t, now.Add(7*24*time.Hour).Unix(), p.ExpiresAt.Unix())
}

func TestValidate_RoundTripAcrossIdentities(t *testing.T) {
	now := time.Now()
	c := newTestCodec(t, func() time.Time { return now })

	for _, id := range []Identity{
		{YandexID: "1"},
		{YandexID: "987654321", Username: "Анна", Email: ""},
		{YandexID: "x-y", Username: "", Email: "a@b.c"},
	} {
		pair, err := c.IssuePair(id)
		require.NoError(t, err)
		p, err := c.Validate(pair.AccessToken, KindAccess)
		require.NoError(t, err)
		require.Equal(t, id, p.Identity)
	}
}

func TestValidate_WrongKind(t *testing.T) {
	c := newTestCodec(t, time.Now)
	pair, err := c.IssuePair(ident)
	require.NoError(t, err)

	_, err = c.Validate(pair.AccessToken, KindRefresh)
	require.ErrorIs(t, err, ErrWrongTokenKind)

	_, err = c.Validate(pair.RefreshToken, KindAccess)
	require.ErrorIs(t, err, ErrWrongTokenKind)
}

func TestValidate_Expired(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := issuedAt
	c := newTestCodec(t, func() time.Time { return clock })

	pair, err := c.IssuePair(ident)
	require.NoError(t, err)

	clock = issuedAt.Add(2*time.Hour + time.Second)
	_, err = c.Validate(pair.AccessToken, KindAccess)
	require.ErrorIs(t, err, ErrExpiredToken)

	// el refresh sigue vigente
	_, err = c.Validate(pair.RefreshToken, KindRefresh)
	require.NoError(t, err)

	clock = issuedAt.Add(8 * 24 * time.Hour)
	_, err = c.Validate(pair.RefreshToken, KindRefresh)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_NegativeTTL(t *testing.T) {
	c, err := NewCodec("test-secret", -time.Minute, -time.Minute)
	require.NoError(t, err)
	pair, err := c.IssuePair(ident)
	require.NoError(t, err)
	_, err = c.Validate(pair.AccessToken, KindAccess)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_Malformed(t *testing.T) {
	c := newTestCodec(t, time.Now)
	other, err := NewCodec("another-secret", time.Hour, time.Hour)
	require.NoError(t, err)
	foreign, err := other.IssuePair(ident)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":        "",
		"garbage":      "test_token",
		"two segments": "a.b",
		"other secret": foreign.AccessToken,
		"tampered":     tamper(t, c),
		"none alg":     unsigned(t),
		"missing type": signRaw(t, jwtv5.MapClaims{"yandex_id": "1", "exp": time.Now().Add(time.Hour).Unix()}),
		"missing sub":  signRaw(t, jwtv5.MapClaims{"type": "access", "exp": time.Now().Add(time.Hour).Unix()}),
		"missing exp":  signRaw(t, jwtv5.MapClaims{"yandex_id": "1", "type": "access"}),
		"unknown type": signRaw(t, jwtv5.MapClaims{"yandex_id": "1", "type": "id", "exp": time.Now().Add(time.Hour).Unix()}),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.Validate(tok, KindAccess)
			require.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestValidate_ExpiredWithForeignSignatureIsMalformed(t *testing.T) {
	c := newTestCodec(t, time.Now)
	other, err := NewCodec("another-secret", -time.Hour, -time.Hour)
	require.NoError(t, err)
	pair, err := other.IssuePair(ident)
	require.NoError(t, err)

	_, err = c.Validate(pair.AccessToken, KindAccess)
	require.ErrorIs(t, err, ErrMalformedToken)
}

func tamper(t *testing.T, c *Codec) string {
	t.Helper()
	pair, err := c.IssuePair(ident)
	require.NoError(t, err)
	parts := strings.Split(pair.AccessToken, ".")
	other, err := c.IssuePair(Identity{YandexID: "999"})
	require.NoError(t, err)
	// claims de otro token con la firma del primero
	parts[1] = strings.Split(other.AccessToken, ".")[1]
	return strings.Join(parts, ".")
}

func unsigned(t *testing.T) string {
	t.Helper()
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.MapClaims{
		"yandex_id":    "1", "type": "access", "exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tk.SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return s
}

func signRaw(t *testing.T, claims jwtv5.MapClaims) string {
	t.Helper()
	s, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}
