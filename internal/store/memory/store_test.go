package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
)

func TestEnsureByYandexID_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := New()

	u1, created, err := s.Users().EnsureByYandexID(ctx, repository.EnsureUserInput{YandexID: "42", Username: "ivan", Email: "i@ya.ru"})
	require.NoError(t, err)
	require.True(t, created)

	// segundo login con datos distintos: no duplica ni pisa
	u2, created, err := s.Users().EnsureByYandexID(ctx, repository.EnsureUserInput{YandexID: "42", Username: "other", Email: "o@ya.ru"})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, u1.ID, u2.ID)
	require.Equal(t, "ivan", u2.Username)
}

func TestEnsureByYandexID_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	var createdCount atomic.Int32
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, created, err := s.Users().EnsureByYandexID(ctx, repository.EnsureUserInput{YandexID: "7"})
			if !assert.NoError(t, err) {
				return
			}
			if created {
				createdCount.Add(1)
			}
			ids <- u.ID
		}()
	}
	wg.Wait()
	close(ids)

	require.Equal(t, int32(1), createdCount.Load())
	var first string
	for id := range ids {
		if first == "" {
			first = id
		}
		require.Equal(t, first, id)
	}
}

func TestEnsureByYandexID_EmptyKey(t *testing.T) {
	_, _, err := New().Users().EnsureByYandexID(context.Background(), repository.EnsureUserInput{})
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestUsers_UpdateAndSuperuser(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _, err := s.Users().EnsureByYandexID(ctx, repository.EnsureUserInput{YandexID: "1", Username: "a", Email: "a@a.a"})
	require.NoError(t, err)

	name := "bob"
	u, err := s.Users().Update(ctx, "1", repository.UpdateUserInput{Username: &name})
	require.NoError(t, err)
	require.Equal(t, "bob", u.Username)
	require.Equal(t, "a@a.a", u.Email)

	require.NoError(t, s.Users().SetSuperuser(ctx, "1", true))
	u, err = s.Users().GetByYandexID(ctx, "1")
	require.NoError(t, err)
	require.True(t, u.Superuser)

	_, err = s.Users().Update(ctx, "404", repository.UpdateUserInput{Username: &name})
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, s.Users().SetSuperuser(ctx, "404", true), repository.ErrNotFound)
}

func TestAudio_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _, err := s.Users().EnsureByYandexID(ctx, repository.EnsureUserInput{YandexID: "1"})
	require.NoError(t, err)

	_, err = s.Audio().Create(ctx, repository.CreateAudioInput{OwnerYandexID: "nobody", Filename: "a", FilePath: "x/a.mp3"})
	require.ErrorIs(t, err, repository.ErrNotFound)

	a, err := s.Audio().Create(ctx, repository.CreateAudioInput{OwnerYandexID: "1", Filename: "a", FilePath: "1/a.mp3"})
	require.NoError(t, err)
	require.Equal(t, "1", a.OwnerYandexID)

	_, err = s.Audio().Create(ctx, repository.CreateAudioInput{OwnerYandexID: "1", Filename: "a", FilePath: "1/a.mp3"})
	require.ErrorIs(t, err, repository.ErrConflict)

	_, err = s.Audio().Create(ctx, repository.CreateAudioInput{OwnerYandexID: "1", Filename: "b", FilePath: "1/b.mp3"})
	require.NoError(t, err)

	list, err := s.Audio().ListByOwner(ctx, "1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, s.Audio().Delete(ctx, a.ID))
	require.ErrorIs(t, s.Audio().Delete(ctx, a.ID), repository.ErrNotFound)

	// el path liberado se puede reutilizar
	_, err = s.Audio().Create(ctx, repository.CreateAudioInput{OwnerYandexID: "1", Filename: "a", FilePath: "1/a.mp3"})
	require.NoError(t, err)
}

func TestUsers_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _, err := s.Users().EnsureByYandexID(ctx, repository.EnsureUserInput{YandexID: "1"})
	require.NoError(t, err)
	a, err := s.Audio().Create(ctx, repository.CreateAudioInput{OwnerYandexID: "1", Filename: "a", FilePath: "1/a.mp3"})
	require.NoError(t, err)

	require.NoError(t, s.Users().Delete(ctx, "1"))
	_, err = s.Audio().GetByID(ctx, a.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, s.Users().Delete(ctx, "1"), repository.ErrNotFound)
}
