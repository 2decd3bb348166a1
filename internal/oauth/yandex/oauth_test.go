package yandex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider levanta token y perfil en un mismo httptest.Server.
type fakeProvider struct {
	tokenStatus   int
	tokenBody     string
	profileStatus int
	profileBody   string

	gotForm    map[string]string
	gotAuthHdr string
}

func (f *fakeProvider) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.gotForm = map[string]string{}
		for k := range r.PostForm {
			f.gotForm[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.tokenStatus)
		_, _ = w.Write([]byte(f.tokenBody))
	})
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		f.gotAuthHdr = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.profileStatus)
		_, _ = w.Write([]byte(f.profileBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srv *httptest.Server) *Client {
	return New(Config{
		ClientID:     "abc123",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/token",
		ProfileURL:   srv.URL + "/info?format=json",
		Timeout:      2 * time.Second,
	})
}

func TestAuthorizeURL(t *testing.T) {
	c := New(Config{ClientID: "abc123"})
	assert.Equal(t, "https://oauth.yandex.ru/authorize?response_type=code&client_id=abc123", c.AuthorizeURL())
}

func TestExchangeCode_OK(t *testing.T) {
	f := &fakeProvider{tokenStatus: 200, tokenBody: `{"access_token":"y0_AAA","token_type":"bearer","expires_in":31536000,"refresh_token":"1:xyz"}`}
	c := newClient(f.server(t))

	tok, err := c.ExchangeCode(context.Background(), "4321")
	require.NoError(t, err)
	assert.Equal(t, "y0_AAA", tok.AccessToken)
	assert.Equal(t, "1:xyz", tok.RefreshToken)

	assert.Equal(t, "authorization_code", f.gotForm["grant_type"])
	assert.Equal(t, "4321", f.gotForm["code"])
	assert.Equal(t, "abc123", f.gotForm["client_id"])
	assert.Equal(t, "secret", f.gotForm["client_secret"])
}

func TestExchangeCode_ProviderError(t *testing.T) {
	f := &fakeProvider{tokenStatus: 400, tokenBody: `{"error":"bad_verification_code","error_description":"Code has expired"}`}
	c := newClient(f.server(t))

	_, err := c.ExchangeCode(context.Background(), "old")
	var pe *ProviderError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, 400, pe.Status)
	assert.Equal(t, "Code has expired", pe.Message)
}

func TestExchangeCode_NonJSONError(t *testing.T) {
	f := &fakeProvider{tokenStatus: 502, tokenBody: `bad gateway`}
	c := newClient(f.server(t))

	_, err := c.ExchangeCode(context.Background(), "x")
	var pe *ProviderError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, 502, pe.Status)
	assert.NotEmpty(t, pe.Message)
}

func TestExchangeCode_MissingAccessToken(t *testing.T) {
	f := &fakeProvider{tokenStatus: 200, tokenBody: `{"token_type":"bearer"}`}
	c := newClient(f.server(t))

	_, err := c.ExchangeCode(context.Background(), "x")
	require.ErrorIs(t, err, ErrEmptyProviderResponse)
}

func TestExchangeCode_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{ClientID: "a", ClientSecret: "b", TokenURL: url + "/token"})
	_, err := c.ExchangeCode(context.Background(), "x")
	var pe *ProviderError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, 0, pe.Status)
}

func TestExchangeCode_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(slow.Close)

	c := New(Config{ClientID: "a", ClientSecret: "b", TokenURL: slow.URL, Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := c.ExchangeCode(context.Background(), "x")
	var pe *ProviderError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetchProfile_OK(t *testing.T) {
	f := &fakeProvider{profileStatus: 200, profileBody: `{
		"id": "1000034426",
		"login": "ivan",
		"real_name": "Ivan Petrov",
		"display_name": "ivan.p",
		"default_email": "ivan@yandex.ru",
		"emails": ["ivan@yandex.ru", "ivan@ya.ru"]
	}`}
	c := newClient(f.server(t))

	p, err := c.FetchProfile(context.Background(), "y0_AAA")
	require.NoError(t, err)
	assert.Equal(t, "OAuth y0_AAA", f.gotAuthHdr)
	assert.Equal(t, "1000034426", p.ID)
	assert.Equal(t, "ivan", p.Login)
	assert.Equal(t, "Ivan Petrov", p.RealName)
	assert.Equal(t, "ivan.p", p.DisplayName)
	assert.Equal(t, "ivan@yandex.ru", p.DefaultEmail)
	assert.Equal(t, []string{"ivan@yandex.ru", "ivan@ya.ru"}, p.Emails)
}

func TestFetchProfile_NumericID(t *testing.T) {
	f := &fakeProvider{profileStatus: 200, profileBody: `{"id": 42, "login": "x"}`}
	c := newClient(f.server(t))

	p, err := c.FetchProfile(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "42", p.ID)
}

func TestFetchProfile_Errors(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
		wantEmpty  bool
	}{
		{name: "unauthorized", status: 401, body: `{"error":"invalid_token"}`, wantStatus: 401, wantMsg: "invalid_token"},
		{name: "plain text", status: 500, body: `boom`, wantStatus: 500, wantMsg: "boom"},
		{name: "empty error body", status: 503, body: ``, wantStatus: 503, wantMsg: "Service Unavailable"},
		{name: "invalid json", status: 200, body: `{"id":`, wantStatus: 200, wantMsg: "invalid profile response"},
		{name: "empty body", status: 200, body: ``, wantEmpty: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeProvider{profileStatus: tc.status, profileBody: tc.body}
			c := newClient(f.server(t))

			_, err := c.FetchProfile(context.Background(), "t")
			if tc.wantEmpty {
				require.ErrorIs(t, err, ErrEmptyProviderResponse)
				return
			}
			var pe *ProviderError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tc.wantStatus, pe.Status)
			assert.Equal(t, tc.wantMsg, pe.Message)
		})
	}
}

func TestFetchProfile_ContextCanceled(t *testing.T) {
	f := &fakeProvider{profileStatus: 200, profileBody: `{"id":"1"}`}
	c := newClient(f.server(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchProfile(ctx, "t")
	var pe *ProviderError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, 0, pe.Status)
}
