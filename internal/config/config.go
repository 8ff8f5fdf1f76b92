package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults for tunables. The history cap and suggestion limits mirror the
// sizes the prediction formulas were calibrated against.
const (
	DefaultHistoryLimit   = 100
	DefaultRecentWindow   = 20
	DefaultMaxSuggestions = 5
	DefaultMarkovOrder    = 2
)

// Config is the on-disk configuration. Zero values mean "use the default".
type Config struct {
	// DataDir overrides the XDG data directory for persisted documents.
	DataDir string `yaml:"data_dir,omitempty"`

	// HistoryLimit caps the rolling command history ring.
	HistoryLimit int `yaml:"history_limit,omitempty"`

	// RecentWindow caps the chain predictor's in-memory command window.
	RecentWindow int `yaml:"recent_window,omitempty"`

	// MaxSuggestions is the default suggestion list length.
	MaxSuggestions int `yaml:"max_suggestions,omitempty"`

	// MarkovOrder is the sequence model state size.
	MarkovOrder int `yaml:"markov_order,omitempty"`

	// Seed fixes the engine's random policies for reproducible runs.
	// Zero means seed from the clock.
	Seed int64 `yaml:"seed,omitempty"`

	// Debug enables debug logging.
	Debug bool `yaml:"debug,omitempty"`
}

// Default returns a fully populated configuration.
func Default() *Config {
	return &Config{
		HistoryLimit:   DefaultHistoryLimit,
		RecentWindow:   DefaultRecentWindow,
		MaxSuggestions: DefaultMaxSuggestions,
		MarkovOrder:    DefaultMarkovOrder,
	}
}

// Load reads the config file at path. A missing file yields the defaults;
// a malformed file is an error (unlike model documents, the config is
// user-authored and silently ignoring it would hide typos).
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config to path, creating the directory if needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// applyDefaults fills zero values after a partial config file.
func (c *Config) applyDefaults() {
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.RecentWindow <= 0 {
		c.RecentWindow = DefaultRecentWindow
	}
	if c.MaxSuggestions <= 0 {
		c.MaxSuggestions = DefaultMaxSuggestions
	}
	if c.MarkovOrder <= 0 {
		c.MarkovOrder = DefaultMarkovOrder
	}
}
