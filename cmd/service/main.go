package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/audioserver/internal/config"
	"github.com/dropDatabas3/audioserver/internal/http/server"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
)

// shutdownTimeout espera máxima para drenar requests en vuelo.
const shutdownTimeout = 15 * time.Second

func main() {
	var (
		configPath = flag.String("config", os.Getenv("CONFIG_PATH"), "archivo YAML opcional (env CONFIG_PATH)")
		envFile    = flag.String("env-file", ".env", "archivo .env a cargar si existe")
	)
	flag.Parse()

	// .env opcional: las variables del sistema tienen prioridad
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: loading %s: %v\n", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config:\n%v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "audioserver",
		Version:     cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		logger.L().Error("server stopped with error", logger.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := server.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("wiring: %w", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Warn("cleanup error", logger.Err(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", logger.String("addr", cfg.Server.Addr), logger.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
