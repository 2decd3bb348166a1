// Package health contiene el service de readiness.
package health

import (
	"context"
	"fmt"
	"time"

	dto "github.com/dropDatabas3/audioserver/internal/http/dto/health"
	"github.com/dropDatabas3/audioserver/internal/jwt"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
)

// Service define las operaciones de health check.
type Service interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Signer emite y valida tokens (self-check del secreto).
type Signer interface {
	IssuePair(id jwt.Identity) (jwt.Pair, error)
	Validate(token string, expected jwt.Kind) (*jwt.Payload, error)
}

// Deps dependencias inyectables. Los checks nil se reportan "disabled".
type Deps struct {
	Version    string
	Signer     Signer
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

type service struct {
	deps Deps
}

func NewService(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("health"),
		logger.Op("Check"),
	)

	resp := dto.HealthResponse{
		Version:    s.deps.Version,
		Components: make(map[string]dto.HealthStatus),
		Timestamp:  time.Now().UTC(),
	}
	hasErrors := false
	hasCritical := false

	// 1) Signer (crítico)
	if s.deps.Signer != nil {
		if err := s.checkSigner(); err != nil {
			resp.Components["signer"] = dto.HealthStatus{Status: "error", Message: err.Error()}
			hasCritical = true
			log.Error("signer self-check failed", logger.Err(err))
		} else {
			resp.Components["signer"] = dto.HealthStatus{Status: "ok"}
		}
	} else {
		resp.Components["signer"] = dto.HealthStatus{Status: "error", Message: "signer not initialized"}
		hasCritical = true
	}

	// 2) DB (crítico)
	if s.deps.DBCheck != nil {
		if err := s.deps.DBCheck(ctx); err != nil {
			resp.Components["db"] = dto.HealthStatus{Status: "error", Message: fmt.Sprintf("unavailable: %v", err)}
			hasCritical = true
			log.Error("db unavailable", logger.Err(err))
		} else {
			resp.Components["db"] = dto.HealthStatus{Status: "ok"}
		}
	} else {
		resp.Components["db"] = dto.HealthStatus{Status: "disabled", Message: "memory store"}
	}

	// 3) Redis (no crítico: sólo rate limit)
	if s.deps.RedisCheck != nil {
		if err := s.deps.RedisCheck(ctx); err != nil {
			resp.Components["redis"] = dto.HealthStatus{Status: "error", Message: fmt.Sprintf("unavailable: %v", err)}
			hasErrors = true
			log.Warn("redis unavailable", logger.Err(err))
		} else {
			resp.Components["redis"] = dto.HealthStatus{Status: "ok"}
		}
	} else {
		resp.Components["redis"] = dto.HealthStatus{Status: "disabled", Message: "memory rate limiter"}
	}

	switch {
	case hasCritical:
		resp.Status = "unavailable"
	case hasErrors:
		resp.Status = "degraded"
	default:
		resp.Status = "ready"
	}
	return resp
}

func (s *service) checkSigner() error {
	pair, err := s.deps.Signer.IssuePair(jwt.Identity{YandexID: "selfcheck"})
	if err != nil {
		return fmt.Errorf("sign failed: %w", err)
	}
	if _, err := s.deps.Signer.Validate(pair.AccessToken, jwt.KindAccess); err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	return nil
}
