package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, read from environment variables.
type Config struct {
	Port   string `env:"ROTA_PORT" envDefault:"8080"`
	DBPath string `env:"ROTA_DB_PATH" envDefault:"rota.db"`

	// Household settings
	Timezone string `env:"ROTA_TIMEZONE" envDefault:"Asia/Ulaanbaatar"`
	BaseURL  string `env:"ROTA_BASE_URL" envDefault:"http://localhost:8080"`

	// Shared secret checked on the daily cron endpoint.
	CronSecret string `env:"ROTA_CRON_SECRET"`

	// Telegram bot credentials. Empty token disables the chat channel.
	TelegramBotToken string `env:"ROTA_TELEGRAM_BOT_TOKEN"`
	TelegramAPIURL   string `env:"ROTA_TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`

	// VAPID keys for web push. Both empty disables the push channel.
	VAPIDPublicKey  string `env:"ROTA_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"ROTA_VAPID_PRIVATE_KEY"`

	LogLevel  string `env:"ROTA_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"ROTA_LOG_FORMAT" envDefault:"text"`
}

// Load reads an optional .env file, parses the environment, and resolves the
// household time zone.
func Load() (Config, error) {
	// A missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, fmt.Errorf("invalid ROTA_TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// Location returns the household time zone. Load validates the name, so this
// does not fail after a successful Load.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
