// Package pg implementa repository.Store sobre PostgreSQL (pgx/v5).
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
)

// pgUniqueViolation SQLSTATE de violación de unique constraint.
const pgUniqueViolation = "23505"

// Options ajustes del pool.
type Options struct {
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
}

// Store es el backend PostgreSQL.
type Store struct {
	pool  *pgxpool.Pool
	users *userRepo
	audio *audioRepo
}

var _ repository.Store = (*Store)(nil)

// New abre el pool y verifica conectividad.
func New(ctx context.Context, dsn string, opts Options) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if opts.MaxConns > 0 {
		pcfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		pcfg.MinConns = opts.MinConns
	}
	if opts.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = opts.ConnMaxLifetime
		pcfg.MaxConnIdleTime = opts.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return newStore(pool), nil
}

func newStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:  pool,
		users: &userRepo{pool: pool},
		audio: &audioRepo{pool: pool},
	}
}

func (s *Store) Users() repository.UserRepository  { return s.users }
func (s *Store) Audio() repository.AudioRepository { return s.audio }

// Ping verifica la conexión (readyz).
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Pool expone el pool interno (migraciones).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
