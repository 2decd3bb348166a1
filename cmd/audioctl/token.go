package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/audioserver/internal/jwt"
)

func (a *app) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Tokens de sesión (debugging)",
	}

	var id jwt.Identity
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Emite un par access/refresh firmado con SECRET_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id.YandexID == "" {
				return errors.New("--yandex-id es requerido")
			}
			if a.cfg.AccessTTL() <= 0 || a.cfg.RefreshTTL() <= 0 {
				return errors.New("TOKEN_EXPIRE_HOURS y REFRESH_TOKEN_EXPIRE_DAYS son requeridos")
			}
			codec, err := jwt.NewCodec(a.cfg.JWT.Secret, a.cfg.AccessTTL(), a.cfg.RefreshTTL())
			if err != nil {
				return err
			}
			pair, err := codec.IssuePair(id)
			if err != nil {
				return err
			}
			return a.printJSON(map[string]string{
				"yandex_id":     id.YandexID,
				"access_token":  pair.AccessToken,
				"refresh_token": pair.RefreshToken,
			})
		},
	}
	issue.Flags().StringVar(&id.YandexID, "yandex-id", "", "subject id")
	issue.Flags().StringVar(&id.Username, "username", "", "username")
	issue.Flags().StringVar(&id.Email, "email", "", "email")

	verify := &cobra.Command{
		Use:   "verify <token>",
		Short: "Valida un token y muestra sus claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := jwt.NewCodec(a.cfg.JWT.Secret, a.cfg.AccessTTL(), a.cfg.RefreshTTL())
			if err != nil {
				return err
			}
			kind := jwt.KindAccess
			if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
				kind = jwt.KindRefresh
			}
			p, err := codec.Validate(args[0], kind)
			if err != nil {
				return err
			}
			return a.printJSON(p)
		},
	}
	verify.Flags().Bool("refresh", false, "validar como refresh token")

	cmd.AddCommand(issue, verify)
	return cmd
}
