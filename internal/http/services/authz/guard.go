// Package authz aplica las reglas de acceso sobre una identidad ya validada.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
)

var (
	// ErrForbidden el sujeto no es dueño del recurso.
	ErrForbidden = errors.New("forbidden")
	// ErrSuperuserRequired la operación es sólo para superusuarios.
	ErrSuperuserRequired = fmt.Errorf("%w: superuser required", ErrForbidden)
)

// Guard chequea ownership y superusuario.
type Guard struct {
	users repository.UserRepository
}

func NewGuard(users repository.UserRepository) *Guard {
	return &Guard{users: users}
}

// RequireOwner falla si subject no es el dueño del recurso.
func (g *Guard) RequireOwner(subjectID, ownerYandexID string) error {
	if subjectID == "" || subjectID != ownerYandexID {
		return ErrForbidden
	}
	return nil
}

// RequireSuperuser lee el usuario del store (el token no lleva el flag) y
// falla si no existe o no es superusuario.
func (g *Guard) RequireSuperuser(ctx context.Context, subjectID string) (*repository.User, error) {
	u, err := g.users.GetByYandexID(ctx, subjectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSuperuserRequired
		}
		return nil, err
	}
	if !u.Superuser {
		logger.From(ctx).Warn("superuser check denied",
			logger.Layer("service"), logger.Op("Guard.RequireSuperuser"), logger.YandexID(subjectID))
		return nil, ErrSuperuserRequired
	}
	return u, nil
}

// RequireOwnerOrSuperuser permite al dueño o a un superusuario.
func (g *Guard) RequireOwnerOrSuperuser(ctx context.Context, subjectID, ownerYandexID string) error {
	if g.RequireOwner(subjectID, ownerYandexID) == nil {
		return nil
	}
	if _, err := g.RequireSuperuser(ctx, subjectID); err != nil {
		if errors.Is(err, ErrForbidden) {
			return ErrForbidden
		}
		return err
	}
	return nil
}
