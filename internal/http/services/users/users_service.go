// Package users contiene el perfil del usuario actual y la baja
// administrativa de usuarios.
package users

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
	"github.com/dropDatabas3/audioserver/internal/http/services/authz"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
	"github.com/dropDatabas3/audioserver/internal/util"
)

const (
	minFieldLen = 3
	maxFieldLen = 255
)

// FieldError rechazo de validación de un campo del perfil.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Reason }

// UpdateInput campos editables. nil = no tocar.
type UpdateInput struct {
	Username *string
	Email    *string
}

// OwnerFiles borra los archivos de un usuario (implementado por *audiofs.Store).
type OwnerFiles interface {
	RemoveOwner(yandexID string) error
}

// Service define las operaciones sobre usuarios.
type Service interface {
	Get(ctx context.Context, yandexID string) (*repository.User, error)
	Update(ctx context.Context, yandexID string, in UpdateInput) (*repository.User, error)
	ListAudio(ctx context.Context, yandexID string) ([]repository.AudioFile, error)
	// DeleteByAdmin borra target si subject es superusuario.
	DeleteByAdmin(ctx context.Context, subjectID, targetYandexID string) error
}

// Deps dependencias del service.
type Deps struct {
	Users repository.UserRepository
	Audio repository.AudioRepository
	Guard *authz.Guard
	Files OwnerFiles
}

type service struct {
	users repository.UserRepository
	audio repository.AudioRepository
	guard *authz.Guard
	files OwnerFiles
}

func NewService(d Deps) Service {
	return &service{users: d.Users, audio: d.Audio, guard: d.Guard, files: d.Files}
}

func (s *service) Get(ctx context.Context, yandexID string) (*repository.User, error) {
	return s.users.GetByYandexID(ctx, yandexID)
}

func (s *service) Update(ctx context.Context, yandexID string, in UpdateInput) (*repository.User, error) {
	if in.Username != nil {
		v := strings.TrimSpace(*in.Username)
		if err := checkLength("username", v); err != nil {
			return nil, err
		}
		in.Username = &v
	}
	if in.Email != nil {
		v := strings.TrimSpace(*in.Email)
		if err := checkLength("email", v); err != nil {
			return nil, err
		}
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Address != v {
			return nil, &FieldError{Field: "email", Reason: "value is not a valid email address"}
		}
		in.Email = &v
	}

	u, err := s.users.Update(ctx, yandexID, repository.UpdateUserInput{Username: in.Username, Email: in.Email})
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Info("profile updated",
		logger.Layer("service"), logger.Op("Users.Update"), logger.YandexID(yandexID),
		logger.String("email", util.MaskEmail(u.Email)))
	return u, nil
}

func checkLength(field, v string) error {
	n := utf8.RuneCountInString(v)
	if n < minFieldLen || n > maxFieldLen {
		return &FieldError{Field: field, Reason: fmt.Sprintf("length must be between %d and %d characters", minFieldLen, maxFieldLen)}
	}
	return nil
}

// ListAudio retorna los audios del usuario; ErrNotFound si el usuario no existe.
func (s *service) ListAudio(ctx context.Context, yandexID string) ([]repository.AudioFile, error) {
	if _, err := s.users.GetByYandexID(ctx, yandexID); err != nil {
		return nil, err
	}
	return s.audio.ListByOwner(ctx, yandexID)
}

func (s *service) DeleteByAdmin(ctx context.Context, subjectID, targetYandexID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("Users.DeleteByAdmin"),
		logger.YandexID(subjectID),
		logger.String("target_yandex_id", targetYandexID),
	)

	if _, err := s.guard.RequireSuperuser(ctx, subjectID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, targetYandexID); err != nil {
		return err
	}
	if s.files != nil {
		// el registro ya no existe: un fallo acá sólo deja archivos huérfanos
		if err := s.files.RemoveOwner(targetYandexID); err != nil {
			log.Error("remove user files failed", logger.Err(err))
		}
	}
	log.Info("user deleted by admin")
	return nil
}
