// Package server arma las dependencias del servidor HTTP a partir de la
// configuración.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/audioserver/internal/config"
	"github.com/dropDatabas3/audioserver/internal/domain/repository"
	"github.com/dropDatabas3/audioserver/internal/http/controllers"
	"github.com/dropDatabas3/audioserver/internal/http/router"
	"github.com/dropDatabas3/audioserver/internal/http/services"
	"github.com/dropDatabas3/audioserver/internal/http/services/health"
	"github.com/dropDatabas3/audioserver/internal/jwt"
	"github.com/dropDatabas3/audioserver/internal/metrics"
	"github.com/dropDatabas3/audioserver/internal/oauth/yandex"
	"github.com/dropDatabas3/audioserver/internal/observability/logger"
	"github.com/dropDatabas3/audioserver/internal/rate"
	"github.com/dropDatabas3/audioserver/internal/storage/audiofs"
	"github.com/dropDatabas3/audioserver/internal/store/memory"
	"github.com/dropDatabas3/audioserver/internal/store/pg"
	"github.com/dropDatabas3/audioserver/internal/util"
)

// Build construye el handler raíz. cleanup libera pool y cliente Redis y
// debe llamarse después de apagar el http.Server.
func Build(ctx context.Context, cfg *config.Config) (http.Handler, func() error, error) {
	log := logger.L().With(logger.Component("wiring"))

	var closers []func() error
	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (http.Handler, func() error, error) {
		_ = cleanup()
		return nil, nil, err
	}

	// 1. Store
	store, pgStore, err := openStore(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func() error { store.Close(); return nil })
	log.Info("store ready", logger.String("driver", cfg.Storage.Driver))

	// 2. Files
	files, err := audiofs.New(cfg.Audio.Root)
	if err != nil {
		return fail(fmt.Errorf("audio storage: %w", err))
	}

	// 3. Tokens
	codec, err := jwt.NewCodec(cfg.JWT.Secret, cfg.AccessTTL(), cfg.RefreshTTL())
	if err != nil {
		return fail(fmt.Errorf("token codec: %w", err))
	}

	// 4. Provider
	provider := yandex.New(yandex.Config{
		ClientID:     cfg.Yandex.ClientID,
		ClientSecret: cfg.Yandex.ClientSecret,
		Timeout:      cfg.Yandex.Timeout,
	})

	// 5. Rate limiter (memory o redis)
	var healthDeps health.Deps
	healthDeps.Version = cfg.App.Version

	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		switch cfg.Cache.Kind {
		case "redis":
			client := rdb.NewClient(&rdb.Options{Addr: cfg.Cache.Redis.Addr, DB: cfg.Cache.Redis.DB})
			closers = append(closers, client.Close)
			limiter = rate.NewRedisLimiter(client, cfg.Cache.Redis.Prefix, cfg.Rate.MaxRequests, cfg.Rate.Window)
			healthDeps.RedisCheck = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		default:
			limiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.Rate.Window)
		}
		log.Info("rate limit enabled",
			logger.String("backend", cfg.Cache.Kind),
			logger.Int("max_requests", cfg.Rate.MaxRequests),
			logger.Duration(cfg.Rate.Window),
			logger.Bool("trust_proxy", cfg.Rate.TrustProxy),
		)
	}

	// 6. Metrics
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		mcfg := metrics.Config{}
		if pgStore != nil {
			mcfg.Pool = pgStore.Pool
		}
		metricsHandler, err = metrics.Register(mcfg)
		if err != nil {
			return fail(fmt.Errorf("metrics: %w", err))
		}
	}

	// 7. Services, controllers, router
	svcs := services.New(services.Deps{
		Store:      store,
		Provider:   provider,
		Codec:      codec,
		Files:      files,
		HealthDeps: healthDeps,
	})

	h := router.New(router.Deps{
		Controllers: controllers.New(svcs, cfg.MaxUploadBytes()),
		Resolver:    svcs.Auth,
		Superuser:   svcs.Guard,
		Limiter:     limiter,
		TrustProxy:  cfg.Rate.TrustProxy,
		Metrics:     metricsHandler,
	})
	return h, cleanup, nil
}

// openStore abre el backend configurado. pgStore es nil con driver memory.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, *pg.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		logger.L().Warn("using in-memory store: data is lost on restart")
		return memory.New(), nil, nil
	case "postgres":
		s, err := pg.New(ctx, cfg.Storage.DSN, pg.Options{MaxConns: cfg.Storage.MaxConns})
		if err != nil {
			return nil, nil, err
		}
		logger.L().Info("postgres connected", logger.String("dsn", util.MaskDSN(cfg.Storage.DSN)))
		if cfg.Storage.AutoMigrate {
			if err := migrate(ctx, s); err != nil {
				s.Close()
				return nil, nil, err
			}
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func migrate(ctx context.Context, s *pg.Store) error {
	m, err := pg.NewMigrator(s.Pool())
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	n, err := m.Up(ctx)
	if err != nil {
		return err
	}
	logger.L().Info("migrations applied", logger.Int("count", n))
	return nil
}
