// Package auth contiene los DTOs de /auth.
package auth

// RedirectResponse GET /auth/yandex.
type RedirectResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// TokenResponse callback y refresh.
type TokenResponse struct {
	YandexID     string `json:"yandex_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshRequest body JSON opcional de POST /auth/refresh. El token también
// se acepta como query o form param refr_token.
type RefreshRequest struct {
	RefrToken string `json:"refr_token"`
}
