package offline

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config describes one deployment of the offline cache.
type Config struct {
	Version      string        `env:"OFFLINE_CACHE_VERSION" envDefault:"stefano-v1"`
	Origin       string        `env:"OFFLINE_ORIGIN" envDefault:"http://localhost:5173"`
	Precache     []string      `env:"OFFLINE_PRECACHE" envSeparator:"," envDefault:"/,/index.html,/manifest.json"`
	FetchTimeout time.Duration `env:"OFFLINE_FETCH_TIMEOUT" envDefault:"10s"`
	PushURLs     []string      `env:"PUSH_URLS" envSeparator:","`
}

// ConfigFromEnv parses Config from environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse offline config: %w", err)
	}
	return cfg, nil
}
