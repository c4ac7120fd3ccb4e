package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
)

// Reporter kinds accepted in [reporter].kind.
const (
	ReporterZap = "zap"
	ReporterNop = "nop"
)

// Config represents eventsd's config.toml.
type Config struct {
	Log      Log      `toml:"log"`
	Metrics  Metrics  `toml:"metrics"`
	Reporter Reporter `toml:"reporter"`
}

// Log configures the zap logger.
type Log struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

// Metrics configures the Prometheus timer and the /metrics listener.
type Metrics struct {
	Enabled   bool   `toml:"enabled"`
	Namespace string `toml:"namespace"`
	Listen    string `toml:"listen"`
}

// Reporter selects where handler failures are reported.
type Reporter struct {
	Kind string `toml:"kind"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log:      Log{Level: "info"},
		Metrics:  Metrics{Enabled: true, Namespace: "eventsagg", Listen: "127.0.0.1:9464"},
		Reporter: Reporter{Kind: ReporterZap},
	}
}

// DefaultPath returns ~/.eventsagg/config.toml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".eventsagg", "config.toml")
}

// Load reads config from the given path on top of Default. Returns error if
// the file is missing or invalid.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks the log level and reporter kind.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Reporter.Kind {
	case ReporterZap, ReporterNop:
	default:
		return fmt.Errorf("reporter.kind: unknown kind %q", c.Reporter.Kind)
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return errors.New("metrics.namespace: required when metrics are enabled")
	}
	return nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
