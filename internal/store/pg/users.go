package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
)

type userRepo struct {
	pool *pgxpool.Pool
}

const userColumns = `id, yandex_id, username, email, superuser, created_at, updated_at`

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	err := row.Scan(&u.ID, &u.YandexID, &u.Username, &u.Email, &u.Superuser, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureByYandexID inserta con ON CONFLICT DO NOTHING: dos logins concurrentes
// del mismo sujeto terminan en una sola fila y ninguno falla.
func (r *userRepo) EnsureByYandexID(ctx context.Context, in repository.EnsureUserInput) (*repository.User, bool, error) {
	if in.YandexID == "" {
		return nil, false, repository.ErrInvalidInput
	}

	const insert = `
		INSERT INTO app_user (id, yandex_id, username, email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (yandex_id) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, insert, uuid.NewString(), in.YandexID, in.Username, in.Email)
	if err != nil {
		return nil, false, err
	}
	created := tag.RowsAffected() == 1

	u, err := r.GetByYandexID(ctx, in.YandexID)
	if err != nil {
		return nil, false, err
	}
	return u, created, nil
}

func (r *userRepo) GetByYandexID(ctx context.Context, yandexID string) (*repository.User, error) {
	const query = `SELECT ` + userColumns + ` FROM app_user WHERE yandex_id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, yandexID))
}

func (r *userRepo) Update(ctx context.Context, yandexID string, in repository.UpdateUserInput) (*repository.User, error) {
	const query = `
		UPDATE app_user
		SET username = COALESCE($2, username),
		    email = COALESCE($3, email),
		    updated_at = NOW()
		WHERE yandex_id = $1
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, yandexID, in.Username, in.Email))
}

func (r *userRepo) SetSuperuser(ctx context.Context, yandexID string, superuser bool) error {
	const query = `UPDATE app_user SET superuser = $2, updated_at = NOW() WHERE yandex_id = $1`
	tag, err := r.pool.Exec(ctx, query, yandexID, superuser)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete borra el usuario; audio_file cae por ON DELETE CASCADE.
func (r *userRepo) Delete(ctx context.Context, yandexID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM app_user WHERE yandex_id = $1`, yandexID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
