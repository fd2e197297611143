package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken      string        `envconfig:"BOT_TOKEN" required:"true"`
	DBDriver      string        `envconfig:"DB_DRIVER" default:"sqlite"` // sqlite|postgres
	DBPath        string        `envconfig:"DB_PATH" default:"./data/something-sweet.db"`
	DatabaseURL   string        `envconfig:"DATABASE_URL"` // required when DB_DRIVER=postgres
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1h"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr      string        `envconfig:"HTTP_ADDR" default:":8080"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
