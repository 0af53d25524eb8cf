package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	// GeminiAPIKey is optional; without it every exchange uses the local formula.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"ARENA_GEMINI_MODEL" envDefault:"gemini-2.5-flash-lite"`

	NarrationTimeout time.Duration `env:"ARENA_NARRATION_TIMEOUT" envDefault:"4s"`
	NarrationRetries int           `env:"ARENA_NARRATION_RETRIES" envDefault:"1"`
	NarrationBackoff time.Duration `env:"ARENA_NARRATION_BACKOFF" envDefault:"500ms"`
	CacheSize        int           `env:"ARENA_CACHE_SIZE" envDefault:"50"`

	ExchangeDelay time.Duration `env:"ARENA_EXCHANGE_DELAY" envDefault:"1s"`
	// Budget of 0 means attribute points are free during setup.
	Budget    int    `env:"ARENA_BUDGET" envDefault:"0"`
	TeamsFile string `env:"ARENA_TEAMS_FILE"`

	SaveDir  string `env:"ARENA_SAVE_DIR" envDefault:".saves"`
	LogFile  string `env:"ARENA_LOG_FILE" envDefault:"arena.log"`
	LogLevel string `env:"ARENA_LOG_LEVEL" envDefault:"info"`
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.NarrationTimeout <= 0 {
		return nil, fmt.Errorf("ARENA_NARRATION_TIMEOUT must be positive, got %s", cfg.NarrationTimeout)
	}
	if cfg.NarrationRetries < 0 {
		return nil, fmt.Errorf("ARENA_NARRATION_RETRIES must not be negative, got %d", cfg.NarrationRetries)
	}
	if cfg.CacheSize < 0 {
		return nil, fmt.Errorf("ARENA_CACHE_SIZE must not be negative, got %d", cfg.CacheSize)
	}
	if cfg.ExchangeDelay < 0 {
		return nil, fmt.Errorf("ARENA_EXCHANGE_DELAY must not be negative, got %s", cfg.ExchangeDelay)
	}
	if cfg.Budget < 0 {
		return nil, fmt.Errorf("ARENA_BUDGET must not be negative, got %d", cfg.Budget)
	}
	return cfg, nil
}
