package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config es la configuración inmutable del servicio. Se construye una vez en
// main (Load) y se pasa a los constructores; no hay settings globales.
type Config struct {
	App struct {
		// dev | prod
		Env     string `yaml:"env" env:"APP_ENV"`
		Version string `yaml:"version" env:"APP_VERSION"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
	} `yaml:"log"`

	Server struct {
		Addr         string        `yaml:"addr" env:"SERVER_ADDR"`
		ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		MaxUploadMB  int64         `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
	} `yaml:"server"`

	Storage struct {
		// postgres | memory
		Driver      string `yaml:"driver" env:"STORAGE_DRIVER"`
		DSN         string `yaml:"dsn" env:"DATABASE_URL"`
		MaxConns    int32  `yaml:"max_conns" env:"STORAGE_MAX_CONNS"`
		AutoMigrate bool   `yaml:"auto_migrate" env:"AUTO_MIGRATE"`
	} `yaml:"storage"`

	Audio struct {
		Root string `yaml:"root" env:"AUDIO_STORAGE_PATH"`
	} `yaml:"audio"`

	JWT struct {
		Secret         string `yaml:"secret" env:"SECRET_KEY"`
		AccessTTLHours int    `yaml:"access_ttl_hours" env:"TOKEN_EXPIRE_HOURS"`
		RefreshTTLDays int    `yaml:"refresh_ttl_days" env:"REFRESH_TOKEN_EXPIRE_DAYS"`
	} `yaml:"jwt"`

	Yandex struct {
		ClientID     string        `yaml:"client_id" env:"YANDEX_CLIENT_ID"`
		ClientSecret string        `yaml:"client_secret" env:"YANDEX_CLIENT_SECRET"`
		Timeout      time.Duration `yaml:"timeout" env:"YANDEX_HTTP_TIMEOUT"`
	} `yaml:"yandex"`

	Rate struct {
		Enabled     bool          `yaml:"enabled" env:"RATE_ENABLED"`
		Window      time.Duration `yaml:"window" env:"RATE_WINDOW"`
		MaxRequests int           `yaml:"max_requests" env:"RATE_MAX_REQUESTS"`
		// TrustProxy: la IP del cliente sale de X-Forwarded-For / X-Real-IP.
		// Sólo detrás de un proxy propio que reescriba esos headers.
		TrustProxy bool `yaml:"trust_proxy" env:"RATE_TRUST_PROXY"`
	} `yaml:"rate"`

	Cache struct {
		// memory | redis (backend del rate limiter)
		Kind  string `yaml:"kind" env:"CACHE_KIND"`
		Redis struct {
			Addr   string `yaml:"addr" env:"REDIS_ADDR"`
			DB     int    `yaml:"db" env:"REDIS_DB"`
			Prefix string `yaml:"prefix" env:"REDIS_PREFIX"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Metrics struct {
		Enabled bool `yaml:"enabled" env:"METRICS_ENABLED"`
	} `yaml:"metrics"`
}

// Default retorna la configuración con los defaults aplicados.
// Los valores sensibles (secret, credenciales, TTLs) no tienen default.
func Default() *Config {
	var c Config
	c.App.Env = "dev"
	c.Log.Level = "info"
	c.Server.Addr = ":8080"
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.MaxUploadMB = 50
	c.Storage.Driver = "postgres"
	c.Storage.MaxConns = 10
	c.Audio.Root = "audio_storage"
	c.Yandex.Timeout = 10 * time.Second
	c.Rate.Enabled = true
	c.Rate.Window = time.Minute
	c.Rate.MaxRequests = 30
	c.Cache.Kind = "memory"
	c.Cache.Redis.Addr = "localhost:6379"
	c.Cache.Redis.Prefix = "rl:"
	c.Metrics.Enabled = true
	return &c
}

// Load arma la configuración: defaults, luego el YAML (si path no está vacío)
// y por último las variables de entorno, que siempre ganan.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Cache.Kind = strings.ToLower(strings.TrimSpace(c.Cache.Kind))
	return c, nil
}

// Validate falla si falta algún valor requerido para arrancar el servicio.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if c.JWT.AccessTTLHours <= 0 {
		errs = append(errs, errors.New("TOKEN_EXPIRE_HOURS must be > 0"))
	}
	if c.JWT.RefreshTTLDays <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRE_DAYS must be > 0"))
	}
	if c.Yandex.ClientID == "" || c.Yandex.ClientSecret == "" {
		errs = append(errs, errors.New("YANDEX_CLIENT_ID and YANDEX_CLIENT_SECRET are required"))
	}
	if c.Yandex.Timeout <= 0 {
		errs = append(errs, errors.New("YANDEX_HTTP_TIMEOUT must be > 0"))
	}

	switch c.Storage.Driver {
	case "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for storage driver postgres"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown cache kind %q", c.Cache.Kind))
	}

	if c.Rate.Enabled && (c.Rate.Window <= 0 || c.Rate.MaxRequests <= 0) {
		errs = append(errs, errors.New("rate window and max requests must be > 0"))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be > 0"))
	}

	return errors.Join(errs...)
}

// AccessTTL TTL del access token.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWT.AccessTTLHours) * time.Hour
}

// RefreshTTL TTL del refresh token.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTTLDays) * 24 * time.Hour
}

// MaxUploadBytes límite del body de upload.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}
