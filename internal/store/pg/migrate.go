package pg

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"

	migrations "github.com/dropDatabas3/audioserver/migrations/postgres"
)

// Migrator aplica las migraciones embebidas con goose.
type Migrator struct {
	provider *goose.Provider
}

// NewMigrator crea un migrator sobre el pool. Close libera el *sql.DB puente
// (no cierra el pool).
func NewMigrator(pool *pgxpool.Pool) (*Migrator, error) {
	sub, err := fs.Sub(migrations.PostgresFS, migrations.PostgresDir)
	if err != nil {
		return nil, fmt.Errorf("migrations fs: %w", err)
	}
	db := stdlib.OpenDBFromPool(pool)
	p, err := goose.NewProvider(database.DialectPostgres, db, sub)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Migrator{provider: p}, nil
}

// Up aplica todas las migraciones pendientes y retorna cuántas corrió.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	res, err := m.provider.Up(ctx)
	if err != nil {
		return len(res), fmt.Errorf("migrate up: %w", err)
	}
	return len(res), nil
}

// Down revierte la última migración aplicada.
func (m *Migrator) Down(ctx context.Context) error {
	if _, err := m.provider.Down(ctx); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// MigrationStatus estado de una migración.
type MigrationStatus struct {
	Version int64
	Source  string
	Applied bool
}

// Status lista las migraciones conocidas y si están aplicadas.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	st, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate status: %w", err)
	}
	out := make([]MigrationStatus, 0, len(st))
	for _, s := range st {
		out = append(out, MigrationStatus{
			Version: s.Source.Version,
			Source:  s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

func (m *Migrator) Close() error { return m.provider.Close() }
