package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	// EnvProduction is the APP_ENV value that enables secure cookies and terse errors.
	EnvProduction = "production"

	devAccessSecret  = "dev-access-token-secret"
	devRefreshSecret = "dev-refresh-token-secret"
)

// ErrMissingSecret is returned in production when a signing secret is not configured.
var ErrMissingSecret = errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set in production")

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env        string `env:"APP_ENV" env-default:"development"`
	ServerPort string `env:"PORT" env-default:"3000"`

	DBDriver    string `env:"DB_DRIVER" env-default:"mysql"`
	DatabaseDSN string `env:"DATABASE_DSN" env-default:"user:password@tcp(localhost:3306)/catalog?charset=utf8mb4&parseTime=True&loc=Local"`
	ResetDB     bool   `env:"RESET_DB" env-default:"false"`

	RedisAddr string `env:"REDIS_ADDR"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" env-default:"0"`

	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	BcryptCost         int           `env:"SALT_ROUNDS" env-default:"12"`

	AuthRateLimit  int           `env:"AUTH_RATE_LIMIT" env-default:"10"`
	AuthRateWindow time.Duration `env:"AUTH_RATE_WINDOW" env-default:"15m"`
	APIRateLimit   int           `env:"API_RATE_LIMIT" env-default:"100"`
	APIRateWindow  time.Duration `env:"API_RATE_WINDOW" env-default:"1m"`

	// TrustProxy takes the client IP from X-Forwarded-For when the request
	// arrives through a loopback or private-network proxy.
	TrustProxy bool `env:"TRUST_PROXY" env-default:"false"`

	SwaggerHost string `env:"SWAGGER_HOST"`
}

// IsProduction reports whether the process runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load builds Config from the environment. It is called once at startup and the
// result is passed to every component that needs it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		if cfg.IsProduction() {
			return nil, ErrMissingSecret
		}
		log.Println("WARNING: token secrets not set, using insecure development fallbacks")
		if cfg.AccessTokenSecret == "" {
			cfg.AccessTokenSecret = devAccessSecret
		}
		if cfg.RefreshTokenSecret == "" {
			cfg.RefreshTokenSecret = devRefreshSecret
		}
	}

	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive")
	}

	return &cfg, nil
}
