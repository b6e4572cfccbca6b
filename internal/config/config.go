package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8081/api/v1"`
	APIToken   string `env:"API_TOKEN"`
	PushURL    string `env:"PUSH_URL" envDefault:"ws://localhost:8081/ws"`

	CachePath       string `env:"CACHE_PATH" envDefault:"ledgersync.db"`
	DefaultCurrency string `env:"DEFAULT_CURRENCY" envDefault:"USD"`

	APITimeoutS       int `env:"API_TIMEOUT_S" envDefault:"5"`
	RefreshDebounceMS int `env:"REFRESH_DEBOUNCE_MS" envDefault:"300"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutS) * time.Second
}

func (c *Config) RefreshDebounce() time.Duration {
	return time.Duration(c.RefreshDebounceMS) * time.Millisecond
}
