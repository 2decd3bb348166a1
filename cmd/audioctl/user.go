package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/audioserver/internal/domain/repository"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
	"github.com/dropDatabas3/audioserver/internal/store/pg"
)

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Consulta usuarios y administra el flag de superusuario",
	}

	withUsers := func(cmd *cobra.Command, fn func(ctx context.Context, users repository.UserRepository) error) error {
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
		return fn(ctx, s.Users())
	}

	show := &cobra.Command{
		Use:   "show <yandex_id>",
		Short: "Muestra un usuario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, func(ctx context.Context, users repository.UserRepository) error {
				u, err := users.GetByYandexID(ctx, args[0])
				if err != nil {
					return err
				}
				return a.printJSON(u)
			})
		},
	}

	setFlag := func(use, short string, value bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <yandex_id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withUsers(cmd, func(ctx context.Context, users repository.UserRepository) error {
					if err := users.SetSuperuser(ctx, args[0], value); err != nil {
						return err
					}
					logger.S().Infow("superuser flag updated", "yandex_id", args[0], "superuser", value)
					printf(a.out, "%s superuser=%t\n", args[0], value)
					return nil
				})
			},
		}
	}

	cmd.AddCommand(
		show,
		setFlag("promote", "Marca al usuario como superusuario", true),
		setFlag("demote", "Quita el flag de superusuario", false),
	)
	return cmd
}
