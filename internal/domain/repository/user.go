package repository

import (
	"context"
	"time"
)

// User es la identidad local de un usuario de Yandex.
type User struct {
	ID        string
	YandexID  string // subject id del provider, único
	Username  string
	Email     string
	Superuser bool // sólo se cambia fuera de banda (audioctl)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EnsureUserInput datos para el alta en el primer login.
type EnsureUserInput struct {
	YandexID string
	Username string
	Email    string
}

// UpdateUserInput campos actualizables. nil = no tocar.
type UpdateUserInput struct {
	Username *string
	Email    *string
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// EnsureByYandexID crea el usuario si no existe (insert-if-absent atómico).
	// Si ya existía lo retorna sin modificarlo y created=false. Nunca falla por
	// duplicado.
	EnsureByYandexID(ctx context.Context, in EnsureUserInput) (user *User, created bool, err error)

	// GetByYandexID busca por subject id. ErrNotFound si no existe.
	GetByYandexID(ctx context.Context, yandexID string) (*User, error)

	// Update aplica los campos no-nil. ErrNotFound si no existe.
	Update(ctx context.Context, yandexID string, in UpdateUserInput) (*User, error)

	// SetSuperuser cambia el flag de superusuario. ErrNotFound si no existe.
	SetSuperuser(ctx context.Context, yandexID string, superuser bool) error

	// Delete elimina el usuario y sus audios. ErrNotFound si no existe.
	Delete(ctx context.Context, yandexID string) error
}
