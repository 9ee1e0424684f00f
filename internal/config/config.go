package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Backend names accepted by the store config key.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// Config holds the runtime configuration for the tp CLI.
type Config struct {
	Backend  string        `mapstructure:"backend"`
	DBPath   string        `mapstructure:"dbPath"`
	Debounce time.Duration `mapstructure:"debounce"`
	Trim     TrimConfig    `mapstructure:"trim"`
}

// TrimConfig sets the first trimming rung used when the store runs out
// of space. Zero means "no limit" for that array.
type TrimConfig struct {
	Completions int `mapstructure:"completions"`
	GameHistory int `mapstructure:"gameHistory"`
	Matchups    int `mapstructure:"matchups"`
	WorkHistory int `mapstructure:"workHistory"`
}

// Load reads configuration from ~/.taskpoints.yaml (if present) and
// TP_* environment variables, with flags layered on top by the caller.
func Load() (*Config, error) {
	v := viper.New()

	homeDir, _ := os.UserHomeDir()
	v.SetDefault("backend", BackendSQLite)
	v.SetDefault("dbPath", "")
	v.SetDefault("debounce", 400*time.Millisecond)
	v.SetDefault("trim.completions", 10000)
	v.SetDefault("trim.gameHistory", 2500)
	v.SetDefault("trim.matchups", 2500)
	v.SetDefault("trim.workHistory", 2500)

	if homeDir != "" {
		v.SetConfigFile(filepath.Join(homeDir, ".taskpoints.yaml"))
		if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("TP")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Backend != BackendSQLite && cfg.Backend != BackendBolt {
		return fmt.Errorf("invalid backend: %s. Must be %q or %q", cfg.Backend, BackendSQLite, BackendBolt)
	}
	if cfg.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}
	if cfg.Trim.Completions < 0 || cfg.Trim.GameHistory < 0 || cfg.Trim.Matchups < 0 || cfg.Trim.WorkHistory < 0 {
		return fmt.Errorf("trim limits must not be negative")
	}
	return nil
}
