package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"quizme"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/quizme.db"`

	// RedisAddr is optional; empty disables the category snapshot.
	RedisAddr string `env:"REDIS_ADDR"`

	UpstreamBaseURL string        `env:"UPSTREAM_BASE_URL" envDefault:"https://opentdb.com"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	PlatformMarker     string `env:"PLATFORM_MARKER" envDefault:"Android"`
	TopCategoriesLimit int    `env:"TOP_CATEGORIES_LIMIT" envDefault:"15"`
	TopUserAgentsLimit int    `env:"TOP_USER_AGENTS_LIMIT" envDefault:"5"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.StoreTimeout)
	}
	return nil
}
