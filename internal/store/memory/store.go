// Package memory implementa repository.Store en memoria (tests y
// storage.driver=memory). Tiene el mismo contrato que el store PostgreSQL:
// yandex_id y file_path únicos, borrado en cascada de audios.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
)

// Store guarda todo bajo un único mutex.
type Store struct {
	mu    sync.RWMutex
	users map[string]*repository.User      // por yandex_id
	audio map[string]*repository.AudioFile // por id
	paths map[string]string                // file_path -> audio id
	now   func() time.Time
}

var _ repository.Store = (*Store)(nil)

// New crea un store vacío.
func New() *Store {
	return &Store{
		users: make(map[string]*repository.User),
		audio: make(map[string]*repository.AudioFile),
		paths: make(map[string]string),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() repository.UserRepository  { return (*userRepo)(s) }
func (s *Store) Audio() repository.AudioRepository { return (*audioRepo)(s) }

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close()                     {}

type userRepo Store

func (r *userRepo) EnsureByYandexID(ctx context.Context, in repository.EnsureUserInput) (*repository.User, bool, error) {
	if in.YandexID == "" {
		return nil, false, repository.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[in.YandexID]; ok {
		cp := *u
		return &cp, false, nil
	}
	now := r.now()
	u := &repository.User{
		ID:        uuid.NewString(),
		YandexID:  in.YandexID,
		Username:  in.Username,
		Email:     in.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.users[in.YandexID] = u
	cp := *u
	return &cp, true, nil
}

func (r *userRepo) GetByYandexID(ctx context.Context, yandexID string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[yandexID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) Update(ctx context.Context, yandexID string, in repository.UpdateUserInput) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[yandexID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	u.UpdatedAt = r.now()
	cp := *u
	return &cp, nil
}

func (r *userRepo) SetSuperuser(ctx context.Context, yandexID string, superuser bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[yandexID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Superuser = superuser
	u.UpdatedAt = r.now()
	return nil
}

func (r *userRepo) Delete(ctx context.Context, yandexID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[yandexID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, a := range r.audio {
		if a.OwnerID == u.ID {
			delete(r.paths, a.FilePath)
			delete(r.audio, id)
		}
	}
	delete(r.users, yandexID)
	return nil
}

type audioRepo Store

func (r *audioRepo) Create(ctx context.Context, in repository.CreateAudioInput) (*repository.AudioFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[in.OwnerYandexID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if _, dup := r.paths[in.FilePath]; dup {
		return nil, repository.ErrConflict
	}
	a := &repository.AudioFile{
		ID:            uuid.NewString(),
		OwnerID:       u.ID,
		OwnerYandexID: u.YandexID,
		Filename:      in.Filename,
		FilePath:      in.FilePath,
		CreatedAt:     r.now(),
	}
	r.audio[a.ID] = a
	r.paths[a.FilePath] = a.ID
	cp := *a
	return &cp, nil
}

func (r *audioRepo) GetByID(ctx context.Context, id string) (*repository.AudioFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.audio[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *audioRepo) ListByOwner(ctx context.Context, ownerYandexID string) ([]repository.AudioFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []repository.AudioFile
	for _, a := range r.audio {
		if a.OwnerYandexID == ownerYandexID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *audioRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.audio[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.paths, a.FilePath)
	delete(r.audio, id)
	return nil
}
