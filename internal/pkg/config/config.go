// Package config loads the portal's settings from the environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Mongo   MongoConfig
}

// APIConfig locates the REST backend every request is proxied to.
type APIConfig struct {
	BaseURL      string        `env:"API_BASE_URL,  default=http://localhost:8080/api"`
	Timeout      time.Duration `env:"API_TIMEOUT,   default=10s"`
	PollInterval time.Duration `env:"POLL_INTERVAL, default=30s"`
}

type SessionConfig struct {
	Cookie string        `env:"SESSION_COOKIE,   default=portal_sid"`
	TTL    time.Duration `env:"SESSION_TTL,      default=24h"`
	Secure bool          `env:"SESSION_SECURE,   default=false"`
	// LoginRateLimit is POST /login attempts per second per client IP.
	LoginRateLimit float64 `env:"LOGIN_RATE_LIMIT, default=1"`
}

type RedisConfig struct {
	Addr      string `env:"REDIS_ADDR,       default=localhost:6379"`
	Password  string `env:"REDIS_PASSWORD"`
	DB        int    `env:"REDIS_DB,         default=0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX, default=portal"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=portal"`
}

// Production reports whether ENV selects production behaviour.
func (c *Config) Production() bool { return c.Env == "production" }

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom is Load with an explicit source of values.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("config: API_BASE_URL must not be empty")
	}
	return &cfg, nil
}

// MustLoad is Load for main; it panics on error.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(err)
	}
	return cfg
}
