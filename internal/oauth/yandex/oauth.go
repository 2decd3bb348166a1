// Package yandex implementa el authorization-code grant contra Yandex OAuth:
// canje del code por un token del provider y lectura del perfil.
// No hay reintentos: cada fallo se propaga al caller como *ProviderError.
package yandex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

const (
	authEndpoint    = "https://oauth.yandex.ru/authorize"
	tokenEndpoint   = "https://oauth.yandex.ru/token"
	profileEndpoint = "https://login.yandex.ru/info?format=json"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// ErrEmptyProviderResponse el provider respondió 2xx sin un valor utilizable.
var ErrEmptyProviderResponse = errors.New("yandex: empty provider response")

// ProviderError es un fallo del provider: respuesta no-2xx, body ilegible o
// error de red (Status == 0).
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return "yandex: " + e.Message
	}
	return fmt.Sprintf("yandex: status %d: %s", e.Status, e.Message)
}

// Config del cliente. Los endpoints vacíos usan los de producción; sólo los
// tests los sobreescriben.
type Config struct {
	ClientID     string
	ClientSecret string

	AuthURL    string
	TokenURL   string
	ProfileURL string

	// Timeout techo de cada llamada al provider (default 10s).
	Timeout time.Duration
	// HTTPClient opcional; si viene sin Timeout se le aplica Timeout.
	HTTPClient *http.Client
}

// Client es el cliente OAuth de Yandex. Inmutable y seguro para uso concurrente.
type Client struct {
	clientID   string
	authURL    string
	profileURL string
	oauth      *oauth2.Config
	http       *http.Client
}

// New crea el cliente.
func New(cfg Config) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = authEndpoint
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = tokenEndpoint
	}
	if cfg.ProfileURL == "" {
		cfg.ProfileURL = profileEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	} else if hc.Timeout == 0 {
		cp := *hc
		cp.Timeout = cfg.Timeout
		hc = &cp
	}

	return &Client{
		clientID:   cfg.ClientID,
		authURL:    cfg.AuthURL,
		profileURL: cfg.ProfileURL,
		http:       hc,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// AuthorizeURL retorna la URL de consentimiento:
// <auth>?response_type=code&client_id=<id>. No hace I/O.
func (c *Client) AuthorizeURL() string {
	return c.authURL + "?response_type=code&client_id=" + url.QueryEscape(c.clientID)
}

// TokenResponse es el token del provider (se usa una vez y se descarta).
type TokenResponse struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
}

// ExchangeCode canjea el code (grant_type=authorization_code, client id/secret
// en el body).
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, exchangeError(err)
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, ErrEmptyProviderResponse
	}
	return &TokenResponse{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}, nil
}

func exchangeError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		msg := re.ErrorDescription
		if msg == "" {
			msg = re.ErrorCode
		}
		if msg == "" {
			msg = errorMessage(re.Body, status)
		}
		return &ProviderError{Status: status, Message: msg}
	}

	var ue *url.Error
	if errors.As(err, &ue) {
		return &ProviderError{Message: ue.Err.Error()}
	}

	// oauth2 no exporta este error: 2xx cuyo body no trae access_token.
	if strings.Contains(err.Error(), "missing access_token") {
		return ErrEmptyProviderResponse
	}
	return &ProviderError{Message: err.Error()}
}

// Profile es el perfil devuelto por login.yandex.ru/info.
type Profile struct {
	ID           string
	Login        string
	RealName     string
	DisplayName  string
	DefaultEmail string
	Emails       []string
}

// FetchProfile lee el perfil con el header "Authorization: OAuth <token>".
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "OAuth "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ProviderError{Message: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &ProviderError{Status: resp.StatusCode, Message: "read profile: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{Status: resp.StatusCode, Message: errorMessage(body, resp.StatusCode)}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrEmptyProviderResponse
	}
	if !gjson.ValidBytes(body) {
		return nil, &ProviderError{Status: resp.StatusCode, Message: "invalid profile response"}
	}

	res := gjson.ParseBytes(body)
	p := &Profile{
		// el id llega como string pero se acepta también numérico
		ID:           res.Get("id").String(),
		Login:        res.Get("login").String(),
		RealName:     res.Get("real_name").String(),
		DisplayName:  res.Get("display_name").String(),
		DefaultEmail: res.Get("default_email").String(),
	}
	for _, e := range res.Get("emails").Array() {
		if s := e.String(); s != "" {
			p.Emails = append(p.Emails, s)
		}
	}
	return p, nil
}

// errorMessage extrae error_description / error del body; si no es JSON usa
// el texto crudo o el status.
func errorMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		r := gjson.ParseBytes(body)
		for _, k := range []string{"error_description", "error", "message"} {
			if v := r.Get(k); v.Exists() && v.String() != "" {
				return v.String()
			}
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		if len(s) > 200 {
			s = s[:200]
		}
		return s
	}
	if t := http.StatusText(status); t != "" {
		return t
	}
	return "unexpected provider response"
}

func unwrapURLError(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err.Error()
	}
	return err.Error()
}
