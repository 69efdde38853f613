package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the process configuration, read from the environment.
// Command-line flags override individual fields.
type Config struct {
	LogLevel  string `env:"TOTEM_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"TOTEM_LOG_FORMAT" envDefault:"text"`

	// CatalogPath points at a quiz YAML file. Empty uses the built-in zoo quiz.
	CatalogPath string `env:"TOTEM_CATALOG"`

	Store      string        `env:"TOTEM_STORE"       envDefault:"memory"`
	SessionTTL time.Duration `env:"TOTEM_SESSION_TTL" envDefault:"0s"`

	RedisAddr     string `env:"TOTEM_REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string `env:"TOTEM_REDIS_PASSWORD"`
	RedisDB       int    `env:"TOTEM_REDIS_DB"       envDefault:"0"`
	RedisPrefix   string `env:"TOTEM_REDIS_PREFIX"   envDefault:"totem:session:"`
	RedisLock     bool   `env:"TOTEM_REDIS_LOCK"     envDefault:"true"`

	SQLitePath string `env:"TOTEM_SQLITE_PATH" envDefault:"totem.db"`

	HTTPAddr string `env:"TOTEM_HTTP_ADDR" envDefault:":8080"`

	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramDebug bool   `env:"TOTEM_TELEGRAM_DEBUG"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from the given variables only.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config: TOTEM_REDIS_ADDR is required for the redis store")
		}
	default:
		return fmt.Errorf("config: unknown store %q (want memory, redis or sqlite)", c.Store)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}

	if c.SessionTTL < 0 {
		return fmt.Errorf("config: TOTEM_SESSION_TTL must not be negative")
	}
	return nil
}
