package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"ipo.db"`

	// CronSecret, when set, must be presented in the X-Cron-Secret header
	// by callers of the price refresh endpoint.
	CronSecret string `env:"CRON_SECRET"`

	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"60s"`

	// PriceGroupSize bounds how many quote lookups run concurrently during
	// a reconciliation pass; PriceGroupDelay is the pause between groups.
	PriceGroupSize  int           `env:"PRICE_GROUP_SIZE" envDefault:"10"`
	PriceGroupDelay time.Duration `env:"PRICE_GROUP_DELAY" envDefault:"500ms"`

	// HTTPTimeout is the per-request timeout for upstream quote sources.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"8s"`

	// RefreshInterval enables the in-process refresh scheduler when > 0.
	// Deployments that trigger refreshes via external cron leave it at 0.
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"0"`
}

func Load() (Config, error) {
	// A missing .env file is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	return cfg, env.Parse(&cfg)
}
