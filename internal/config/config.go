package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all pkasla configuration, read from environment variables.
type Config struct {
	Mode string `env:"PKASLA_MODE" envDefault:"api"`

	// Server
	Host string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"APP_PORT" envDefault:"8080"`

	// Environment name reported by the system-info endpoint.
	Environment string `env:"APP_ENV" envDefault:"development"`

	// Database
	DatabaseURL string `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/pkasla?sslmode=disable"`

	// Redis
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Migrations
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Metrics
	MetricsPath string `env:"METRICS_PATH" envDefault:"/metrics"`

	// Auth
	JWTSecret     string `env:"PKASLA_JWT_SECRET"`
	SessionMaxAge string `env:"PKASLA_SESSION_MAX_AGE" envDefault:"24h"`

	// Seed bootstrap admin (mode=seed)
	AdminEmail    string `env:"PKASLA_ADMIN_EMAIL"`
	AdminPassword string `env:"PKASLA_ADMIN_PASSWORD"`

	// Global Telegram bot token fallback, used when neither a user-linked
	// token nor a stored settings token is available.
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`

	// Dev mode
	DevMode bool `env:"DEV_MODE" envDefault:"false"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config from env: %w", err)
	}
	return cfg, nil
}

// ListenAddr returns the address the HTTP server should listen on.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
