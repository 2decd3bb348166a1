// audioctl es el CLI de operación: migraciones, flag de superusuario y
// emisión de tokens para debugging.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/audioserver/internal/config"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
)

// cmdTimeout techo de cada comando contra la base.
const cmdTimeout = 2 * time.Minute

type app struct {
	configPath string
	out        io.Writer
	cfg        *config.Config
}

func main() {
	_ = godotenv.Load()
	logger.Init(logger.Config{Env: "dev", Level: envOr("LOG_LEVEL", "warn"), ServiceName: "audioctl"})
	defer func() { _ = logger.Sync() }()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "audioctl",
		Short:         "CLI de operación del audioserver",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("CONFIG_PATH"), "archivo YAML opcional (env CONFIG_PATH)")

	root.AddCommand(a.migrateCmd(), a.userCmd(), a.tokenCmd())
	return root
}

func (a *app) requireDSN() error {
	if a.cfg.Storage.DSN == "" {
		return errors.New("DATABASE_URL es requerido")
	}
	return nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cmdTimeout)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
