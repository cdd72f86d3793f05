package config

import (
	"os"
	"path/filepath"

	"github.com/Iron-Ham/parawalk/internal/errors"
	"github.com/spf13/viper"
)

// Config represents the complete parawalk configuration
type Config struct {
	Pool    PoolConfig    `mapstructure:"pool"`
	Walk    WalkConfig    `mapstructure:"walk"`
	Logging LoggingConfig `mapstructure:"logging"`
	Debug   DebugConfig   `mapstructure:"debug"`
}

// PoolConfig controls the worker pool
type PoolConfig struct {
	// Workers is the fixed number of worker goroutines (default: 4, max: 1024)
	Workers int `mapstructure:"workers"`
}

// WalkConfig controls the graph traversal
type WalkConfig struct {
	// Start lists the node indices seeded into the pool, one task each (default: [0])
	Start []int `mapstructure:"start"`
}

// LoggingConfig controls debug logging
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: warn)
	Level string `mapstructure:"level"`
	// Dir is where debug.log is written. Empty means stderr.
	Dir string `mapstructure:"dir"`
}

// DebugConfig holds developer-facing switches
type DebugConfig struct {
	// CheckInvariants panics when a lock-guarded invariant is violated
	CheckInvariants bool `mapstructure:"check_invariants"`
}

// MaxWorkers bounds Pool.Workers.
const MaxWorkers = 1024

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Pool: PoolConfig{
			Workers: 4,
		},
		Walk: WalkConfig{
			Start: []int{0},
		},
		Logging: LoggingConfig{
			Level: "warn",
			Dir:   "",
		},
		Debug: DebugConfig{
			CheckInvariants: false,
		},
	}
}

// ApplyDefaults registers default values with v
func ApplyDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("pool.workers", defaults.Pool.Workers)
	v.SetDefault("walk.start", defaults.Walk.Start)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.dir", defaults.Logging.Dir)
	v.SetDefault("debug.check_invariants", defaults.Debug.CheckInvariants)
}

// LoadFrom reads the configuration from v and validates it
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewValidationError("cannot decode configuration").WithCause(err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "parawalk")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".parawalk"
	}
	return filepath.Join(home, ".config", "parawalk")
}
