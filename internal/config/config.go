// Package config maps environment variables onto the application settings.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// --- Server ---
	Port string `envconfig:"PORT" default:"3333"`

	// --- Database ---
	DatabaseURL   string        `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns    int32         `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns    int32         `envconfig:"DB_MIN_CONNS" default:"5"`
	DBMaxConnLife time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// --- Auth ---
	ClerkSecretKey string `envconfig:"CLERK_SECRET_KEY" required:"true"`

	// --- Streak engine ---
	InitialLives      int `envconfig:"STREAK_INITIAL_LIVES" default:"1"`
	MaxLives          int `envconfig:"STREAK_MAX_LIVES" default:"5"`
	MilestoneInterval int `envconfig:"STREAK_MILESTONE_INTERVAL" default:"10"`
	// Reading-day boundary. Requests may override per call with an
	// explicit IANA zone; this is the default when they don't.
	Timezone    string         `envconfig:"APP_TIMEZONE" default:"UTC"`
	TimezoneLoc *time.Location `ignored:"true"`

	// --- Ops ---
	MetricsUser    string  `envconfig:"METRICS_USER"`
	MetricsPass    string  `envconfig:"METRICS_PASS"`
	PprofSecret    string  `envconfig:"PPROF_SECRET"`
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"30"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.TimezoneLoc = loc

	if cfg.InitialLives < 0 || cfg.MaxLives < cfg.InitialLives {
		return nil, fmt.Errorf("invalid lives config: initial=%d max=%d", cfg.InitialLives, cfg.MaxLives)
	}
	if cfg.MilestoneInterval <= 0 {
		return nil, fmt.Errorf("invalid milestone interval: %d", cfg.MilestoneInterval)
	}

	return &cfg, nil
}
