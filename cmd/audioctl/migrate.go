package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/audioserver/internal/store/pg"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones de PostgreSQL (goose)",
	}

	withMigrator := func(cmd *cobra.Command, fn func(ctx context.Context, m *pg.Migrator) error) error {
		if err := a.requireDSN(); err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		s, err := pg.New(ctx, a.cfg.Storage.DSN, pg.Options{MaxConns: 2})
		if err != nil {
			return err
		}
		defer s.Close()

		m, err := pg.NewMigrator(s.Pool())
		if err != nil {
			return err
		}
		defer func() { _ = m.Close() }()
		return fn(ctx, m)
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Aplica las migraciones pendientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *pg.Migrator) error {
				n, err := m.Up(ctx)
				if err != nil {
					return err
				}
				printf(a.out, "applied %d migration(s)\n", n)
				return nil
			})
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Revierte la última migración",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *pg.Migrator) error {
				if err := m.Down(ctx); err != nil {
					return err
				}
				printf(a.out, "rolled back 1 migration\n")
				return nil
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Lista las migraciones y su estado",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *pg.Migrator) error {
				st, err := m.Status(ctx)
				if err != nil {
					return err
				}
				for _, s := range st {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					printf(a.out, "%05d  %-8s %s\n", s.Version, state, s.Source)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}
