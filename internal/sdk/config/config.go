// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	SessionSecret string `env:"SESSION_SECRET" envDefault:"default-session-secret-change-in-production"`
	SessionTTL    int    `env:"SESSION_TTL_HOURS" envDefault:"336"` // 14 days

	SentryDSN         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT" envDefault:"development"`

	MailAPIKey   string `env:"MAIL_API_KEY"`
	MailAPIURL   string `env:"MAIL_API_URL"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"noreply@alumni-partner.example"`
	ResetBaseURL string `env:"RESET_BASE_URL" envDefault:"http://localhost:8080/reset-password"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
