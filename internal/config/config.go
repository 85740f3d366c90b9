// Package config defines worktally's runtime configuration, loaded through
// viper from a config file, environment variables, and flag bindings.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/worktally/worktally/internal/logging"
)

// Config is the complete worktally configuration.
type Config struct {
	Run     RunConfig     `mapstructure:"run"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// RunConfig controls the run command's simulated workers and display.
type RunConfig struct {
	// TickMs is the interval between unit credits per worker, in
	// milliseconds.
	TickMs int `mapstructure:"tick_ms"`

	// NoTUI switches from the terminal display to plain log output.
	NoTUI bool `mapstructure:"no_tui"`
}

// MetricsConfig controls the Prometheus exporter.
type MetricsConfig struct {
	// Enabled starts the /metrics endpoint during run.
	Enabled bool `mapstructure:"enabled"`

	// Addr is the listen address for the exporter.
	Addr string `mapstructure:"addr"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level"`

	// Path is the log file path. Empty logs to stderr.
	Path string `mapstructure:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			TickMs: 50,
			NoTUI:  false,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9184",
		},
		Logging: LoggingConfig{
			Level: logging.LevelInfo,
			Path:  "",
		},
	}
}

// TickInterval returns the worker tick as a time.Duration.
func (c *RunConfig) TickInterval() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("run.tick_ms", defaults.Run.TickMs)
	viper.SetDefault("run.no_tui", defaults.Run.NoTUI)

	viper.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	viper.SetDefault("metrics.addr", defaults.Metrics.Addr)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.path", defaults.Logging.Path)
}

// Load reads the configuration from viper into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Validate checks the Config and returns all validation errors found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Run.TickMs <= 0 {
		errs = append(errs, ValidationError{
			Field:   "run.tick_ms",
			Value:   c.Run.TickMs,
			Message: "must be > 0",
		})
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, ValidationError{
			Field:   "metrics.addr",
			Value:   c.Metrics.Addr,
			Message: "must be set when metrics are enabled",
		})
	}
	if !slices.Contains(logging.ValidLevels(), c.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: "must be one of DEBUG, INFO, WARN, ERROR",
		})
	}
	return errs
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "worktally")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".worktally"
	}
	return filepath.Join(home, ".config", "worktally")
}
