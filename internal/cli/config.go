package cli

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config holds defaults read from the environment. Flags override them.
type Config struct {
	Format   string `env:"VIEWDB_FORMAT" envDefault:"text"`
	LogLevel string `env:"VIEWDB_LOG_LEVEL" envDefault:"info"`
	Table    string `env:"VIEWDB_TABLE" envDefault:"records"`
}

// LoadConfig parses Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Level parses LogLevel (debug, info, warn, error).
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid VIEWDB_LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
