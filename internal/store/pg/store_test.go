package pg

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
)

// newTestStore abre DATABASE_URL y aplica las migraciones; sin DSN el test se salta.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := New(ctx, dsn, Options{MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	m, err := NewMigrator(s.Pool())
	require.NoError(t, err)
	defer m.Close()
	_, err = m.Up(ctx)
	require.NoError(t, err)
	return s
}

// testYandexID genera un sujeto único y lo borra al terminar.
func testYandexID(t *testing.T, s *Store) string {
	t.Helper()
	id := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_ = s.Users().Delete(context.Background(), id)
	})
	return id
}

func TestEnsureByYandexID_InsertIfAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	yid := testYandexID(t, s)

	u1, created, err := s.Users().EnsureByYandexID(ctx, repository.EnsureUserInput{YandexID: yid, Username: "ivan", Email: "i@ya.ru"})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, yid, u1.YandexID)
	require.False(t, u1.Superuser)

	// segundo login: misma fila, sin pisar el perfil
	u2, created, err := s.Users().EnsureByYandexID(ctx, repository.EnsureUserInput{YandexID: yid, Username: "other", Email: "o@ya.ru"})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, u1.ID, u2.ID)
	require.Equal(t, "ivan", u2.Username)
	require.Equal(t, "i@ya.ru", u2.Email)

	_, _, err = s.Users().EnsureByYandexID(ctx, repository.EnsureUserInput{})
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestEnsureByYandexID_ConcurrentSingleRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	yid := testYandexID(t, s)

	const workers = 16
	var (
		wg      sync.WaitGroup
		created atomic.Int32
		ids     sync.Map
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			u, ok, err := s.Users().EnsureByYandexID(ctx, repository.EnsureUserInput{YandexID: yid, Username: "ivan"})
			if !assert.NoError(t, err) {
				return
			}
			if ok {
				created.Add(1)
			}
			ids.Store(u.ID, struct{}{})
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, int32(1), created.Load())
	distinct := 0
	ids.Range(func(_, _ any) bool {
		distinct++
		return true
	})
	require.Equal(t, 1, distinct)

	var rows int
	err := s.Pool().QueryRow(ctx, `SELECT count(*) FROM app_user WHERE yandex_id = $1`, yid).Scan(&rows)
	require.NoError(t, err)
	require.Equal(t, 1, rows)
}

func TestAudioCreate_ConflictAndCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	yid := testYandexID(t, s)

	_, _, err := s.Users().EnsureByYandexID(ctx, repository.EnsureUserInput{YandexID: yid})
	require.NoError(t, err)

	path := "/data/" + yid + "/song.mp3"
	a, err := s.Audio().Create(ctx, repository.CreateAudioInput{OwnerYandexID: yid, Filename: "song", FilePath: path})
	require.NoError(t, err)

	_, err = s.Audio().Create(ctx, repository.CreateAudioInput{OwnerYandexID: yid, Filename: "song", FilePath: path})
	require.ErrorIs(t, err, repository.ErrConflict)

	_, err = s.Audio().Create(ctx, repository.CreateAudioInput{OwnerYandexID: "missing-" + yid, Filename: "x", FilePath: path + ".2"})
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.Users().Delete(ctx, yid))
	_, err = s.Audio().GetByID(ctx, a.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
