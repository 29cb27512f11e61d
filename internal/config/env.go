// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server's runtime settings. Table contents live in YAML;
// this only says where things are and how the process runs.
type Config struct {
	DataDir        string        `env:"NURTURE_DATA_DIR"        envDefault:"data"`
	TablesDir      string        `env:"NURTURE_TABLES_DIR"      envDefault:"."`
	Profile        string        `env:"NURTURE_PROFILE"`
	Store          string        `env:"NURTURE_STORE"           envDefault:"file"`
	SQLitePath     string        `env:"NURTURE_SQLITE_PATH"     envDefault:"data/economy.sqlite"`
	JournalDir     string        `env:"NURTURE_JOURNAL_DIR"`
	HTTPAddr       string        `env:"NURTURE_HTTP_ADDR"       envDefault:":8080"`
	GRPCAddr       string        `env:"NURTURE_GRPC_ADDR"       envDefault:":9090"`
	Seed           uint64        `env:"NURTURE_SEED"`
	CooldownUnit   time.Duration `env:"NURTURE_COOLDOWN_UNIT"   envDefault:"1m"`
	ReloadInterval time.Duration `env:"NURTURE_RELOAD_INTERVAL" envDefault:"2s"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.Store {
	case "file", "sqlite", "memory":
	default:
		return Config{}, fmt.Errorf("NURTURE_STORE: unknown store %q", cfg.Store)
	}
	if cfg.CooldownUnit <= 0 {
		return Config{}, fmt.Errorf("NURTURE_COOLDOWN_UNIT must be positive, got %s", cfg.CooldownUnit)
	}
	return cfg, nil
}
