package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
	"github.com/dropDatabas3/audioserver/internal/jwt"
	"github.com/dropDatabas3/audioserver/internal/metrics"
	"github.com/dropDatabas3/audioserver/internal/oauth/yandex"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
	"github.com/dropDatabas3/audioserver/internal/util"
)

// Service errors
var (
	ErrMissingCode          = fmt.Errorf("code is required")
	ErrMissingRefreshToken  = fmt.Errorf("refr_token is required")
	ErrMissingProviderToken = fmt.Errorf("provider returned no access token")
	ErrMissingSubjectID     = fmt.Errorf("provider returned no user id")
)

type service struct {
	provider Provider
	codec    TokenCodec
	users    repository.UserRepository
}

// NewService crea el service de autenticación.
func NewService(d Deps) Service {
	return &service{
		provider: d.Provider,
		codec:    d.Codec,
		users:    d.Users,
	}
}

func (s *service) AuthorizationURL() string {
	return s.provider.AuthorizeURL()
}

func (s *service) CompleteLogin(ctx context.Context, code string) (*LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("Auth.CompleteLogin"),
		logger.Provider("yandex"),
	)

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrMissingCode
	}

	tok, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		if errors.Is(err, yandex.ErrEmptyProviderResponse) {
			metrics.RecordLogin("missing_token")
			return nil, ErrMissingProviderToken
		}
		log.Warn("code exchange failed", logger.Err(err))
		metrics.RecordLogin("provider_error")
		return nil, err
	}
	if tok == nil || tok.AccessToken == "" {
		metrics.RecordLogin("missing_token")
		return nil, ErrMissingProviderToken
	}

	profile, err := s.provider.FetchProfile(ctx, tok.AccessToken)
	if err != nil {
		if errors.Is(err, yandex.ErrEmptyProviderResponse) {
			metrics.RecordLogin("missing_subject")
			return nil, ErrMissingSubjectID
		}
		log.Warn("profile fetch failed", logger.Err(err))
		metrics.RecordLogin("provider_error")
		return nil, err
	}
	if profile == nil || strings.TrimSpace(profile.ID) == "" {
		metrics.RecordLogin("missing_subject")
		return nil, ErrMissingSubjectID
	}

	id := identityFromProfile(profile)
	pair, err := s.codec.IssuePair(id)
	if err != nil {
		metrics.RecordLogin("error")
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	// insert-if-absent: un segundo login del mismo sujeto no duplica ni falla
	_, created, err := s.users.EnsureByYandexID(ctx, repository.EnsureUserInput{
		YandexID: id.YandexID,
		Username: id.Username,
		Email:    id.Email,
	})
	if err != nil {
		log.Error("ensure user failed", logger.YandexID(id.YandexID), logger.Err(err))
		metrics.RecordLogin("error")
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	if created {
		metrics.RecordLogin("created")
		log.Info("user created on first login",
			logger.YandexID(id.YandexID),
			logger.String("email", util.MaskEmail(id.Email)),
		)
	} else {
		metrics.RecordLogin("existing")
		log.Debug("login completed", logger.YandexID(id.YandexID))
	}

	return &LoginResult{YandexID: id.YandexID, Pair: pair, Created: created}, nil
}

// identityFromProfile: username = real_name, o display_name, o login.
// email = default_email, o el primero de emails.
func identityFromProfile(p *yandex.Profile) jwt.Identity {
	username := firstNonEmpty(p.RealName, p.DisplayName, p.Login)
	email := p.DefaultEmail
	if email == "" && len(p.Emails) > 0 {
		email = p.Emails[0]
	}
	return jwt.Identity{
		YandexID: strings.TrimSpace(p.ID),
		Username: username,
		Email:    email,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// Refresh emite un par nuevo con las claims del refresh token; no relee el
// store, así que el par refleja el snapshot del momento del login.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Auth.Refresh"))

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	payload, err := s.codec.Validate(refreshToken, jwt.KindRefresh)
	if err != nil {
		log.Debug("refresh token rejected", logger.Err(err))
		metrics.RecordRefresh("rejected")
		return nil, err
	}

	pair, err := s.codec.IssuePair(payload.Identity)
	if err != nil {
		metrics.RecordRefresh("error")
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	metrics.RecordRefresh("ok")
	return &LoginResult{YandexID: payload.YandexID, Pair: pair}, nil
}

func (s *service) ResolveCurrentUser(_ context.Context, accessToken string) (*jwt.Payload, error) {
	return s.codec.Validate(accessToken, jwt.KindAccess)
}
