package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
)

type audioRepo struct {
	pool *pgxpool.Pool
}

func (r *audioRepo) Create(ctx context.Context, in repository.CreateAudioInput) (*repository.AudioFile, error) {
	const query = `
		INSERT INTO audio_file (id, user_id, filename, file_path)
		SELECT $1, u.id, $3, $4 FROM app_user u WHERE u.yandex_id = $2
		RETURNING id, user_id, created_at
	`
	a := repository.AudioFile{
		OwnerYandexID: in.OwnerYandexID,
		Filename:      in.Filename,
		FilePath:      in.FilePath,
	}
	err := r.pool.QueryRow(ctx, query, uuid.NewString(), in.OwnerYandexID, in.Filename, in.FilePath).
		Scan(&a.ID, &a.OwnerID, &a.CreatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// el SELECT no encontró al owner
		return nil, repository.ErrNotFound
	case isUniqueViolation(err):
		return nil, repository.ErrConflict
	case err != nil:
		return nil, err
	}
	return &a, nil
}

func (r *audioRepo) GetByID(ctx context.Context, id string) (*repository.AudioFile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	const query = `
		SELECT a.id, a.user_id, u.yandex_id, a.filename, a.file_path, a.created_at
		FROM audio_file a JOIN app_user u ON u.id = a.user_id
		WHERE a.id = $1
	`
	var a repository.AudioFile
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.OwnerID, &a.OwnerYandexID, &a.Filename, &a.FilePath, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *audioRepo) ListByOwner(ctx context.Context, ownerYandexID string) ([]repository.AudioFile, error) {
	const query = `
		SELECT a.id, a.user_id, u.yandex_id, a.filename, a.file_path, a.created_at
		FROM audio_file a JOIN app_user u ON u.id = a.user_id
		WHERE u.yandex_id = $1
		ORDER BY a.created_at, a.id
	`
	rows, err := r.pool.Query(ctx, query, ownerYandexID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.AudioFile
	for rows.Next() {
		var a repository.AudioFile
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.OwnerYandexID, &a.Filename, &a.FilePath, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *audioRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM audio_file WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
