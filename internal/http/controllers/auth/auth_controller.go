// Package auth contiene los controllers de /auth.
package auth

import (
	"errors"
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/audioserver/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/audioserver/internal/http/errors"
	"github.com/dropDatabas3/audioserver/internal/http/helpers"
	svc "github.com/dropDatabas3/audioserver/internal/http/services/auth"
	"github.com/dropDatabas3/audioserver/internal/jwt"
	"github.com/dropDatabas3/audioserver/internal/oauth/yandex"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
)

// AuthController maneja login con Yandex y refresh.
type AuthController struct {
	service svc.Service
}

// NewAuthController crea el controller.
func NewAuthController(service svc.Service) *AuthController {
	return &AuthController{service: service}
}

// Redirect maneja GET /auth/yandex.
func (c *AuthController) Redirect(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.RedirectResponse{RedirectURL: c.service.AuthorizationURL()})
}

// Callback maneja GET /auth/yandex/callback?code=...
func (c *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthController.Callback"))

	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("code"))
		return
	}

	res, err := c.service.CompleteLogin(ctx, code)
	if err != nil {
		appErr := mapLoginError(err)
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Error("login failed", logger.Err(err))
		}
		httperrors.WriteError(w, appErr)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.TokenResponse{
		YandexID:     res.YandexID,
		AccessToken:  res.Pair.AccessToken,
		RefreshToken: res.Pair.RefreshToken,
	})
}

// Refresh maneja POST /auth/refresh. refr_token se acepta como query param,
// form param o campo JSON.
func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthController.Refresh"))

	token := r.URL.Query().Get("refr_token")
	if token == "" {
		ct := strings.ToLower(r.Header.Get("Content-Type"))
		switch {
		case strings.Contains(ct, "application/json"):
			var req dto.RefreshRequest
			if !helpers.ReadJSON(w, r, &req) {
				return
			}
			token = req.RefrToken
		case strings.Contains(ct, "application/x-www-form-urlencoded"), strings.Contains(ct, "multipart/form-data"):
			token = r.PostFormValue("refr_token")
		}
	}

	res, err := c.service.Refresh(ctx, token)
	if err != nil {
		appErr := mapRefreshError(err)
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Error("refresh failed", logger.Err(err))
		}
		httperrors.WriteError(w, appErr)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.TokenResponse{
		YandexID:     res.YandexID,
		AccessToken:  res.Pair.AccessToken,
		RefreshToken: res.Pair.RefreshToken,
	})
}

func mapLoginError(err error) *httperrors.AppError {
	var pe *yandex.ProviderError
	switch {
	case errors.Is(err, svc.ErrMissingCode):
		return httperrors.ErrMissingFields.WithDetail("code")
	case errors.Is(err, svc.ErrMissingProviderToken), errors.Is(err, yandex.ErrEmptyProviderResponse):
		return httperrors.ErrProvider.WithDetail("Failed to obtain provider token").WithCause(err)
	case errors.Is(err, svc.ErrMissingSubjectID):
		return httperrors.ErrProvider.WithDetail("Failed to obtain user id").WithCause(err)
	case errors.As(err, &pe):
		appErr := httperrors.ErrProvider.WithDetail("Yandex error: " + pe.Message).WithCause(err)
		if pe.Status >= 400 && pe.Status < 600 {
			appErr = appErr.WithStatus(pe.Status)
		}
		return appErr
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}

func mapRefreshError(err error) *httperrors.AppError {
	switch {
	case errors.Is(err, svc.ErrMissingRefreshToken):
		return httperrors.ErrMissingFields.WithDetail("refr_token")
	case errors.Is(err, jwt.ErrExpiredToken):
		return httperrors.ErrTokenExpired
	case errors.Is(err, jwt.ErrMalformedToken), errors.Is(err, jwt.ErrWrongTokenKind):
		return httperrors.ErrTokenInvalid
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}
