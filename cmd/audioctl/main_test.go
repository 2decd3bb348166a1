package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return out.String(), err
}

func TestTokenIssueAndVerify(t *testing.T) {
	t.Setenv("SECRET_KEY", "cli-secret")
	t.Setenv("TOKEN_EXPIRE_HOURS", "1")
	t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "7")

	out, err := runCLI(t, "token", "issue", "--yandex-id", "42", "--username", "ana")
	require.NoError(t, err)

	var pair map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &pair))
	require.Equal(t, "42", pair["yandex_id"])
	require.NotEmpty(t, pair["access_token"])

	out, err = runCLI(t, "token", "verify", pair["access_token"])
	require.NoError(t, err)
	require.Contains(t, out, `"YandexID": "42"`)

	_, err = runCLI(t, "token", "verify", "--refresh", pair["access_token"])
	require.Error(t, err)

	_, err = runCLI(t, "token", "verify", "--refresh", pair["refresh_token"])
	require.NoError(t, err)
}

func TestTokenIssue_RequiresSubject(t *testing.T) {
	t.Setenv("SECRET_KEY", "cli-secret")
	t.Setenv("TOKEN_EXPIRE_HOURS", "1")
	t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "7")

	_, err := runCLI(t, "token", "issue")
	require.Error(t, err)
}

func TestUserAndMigrate_RequireDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := runCLI(t, "user", "show", "42")
	require.EqualError(t, err, "DATABASE_URL es requerido")

	_, err = runCLI(t, "migrate", "status")
	require.EqualError(t, err, "DATABASE_URL es requerido")
}
