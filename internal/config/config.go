// Package config handles the user-level configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents configuration stored in ~/.config/refdup/config.yml.
// Every field is a default for the matching command-line flag; flags
// given explicitly win.
type Config struct {
	GroupByYear       bool     `yaml:"group_by_year,omitempty"`
	Parallel          bool     `yaml:"parallel,omitempty"`
	Workers           int      `yaml:"workers,omitempty"`
	TitleThreshold    float64  `yaml:"title_threshold,omitempty"`
	SourcePreferences []string `yaml:"source_preferences,omitempty"`
	CSVDelimiter      string   `yaml:"csv_delimiter,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "refdup"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// PathEnv names the environment variable that overrides the
	// resolved config file path entirely.
	PathEnv = "REFDUP_CONFIG"
)

// cache holds the loaded config between calls.
var cache *Config

// Path returns the path to the config file. REFDUP_CONFIG wins, then
// XDG_CONFIG_HOME, then ~/.config.
func Path() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the configuration file. Returns an empty config (not an
// error) if the file doesn't exist.
func Load() (*Config, error) {
	if cache != nil {
		return cache, nil
	}

	path := Path()
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cache = &cfg
	return &cfg, nil
}

// Reset clears the cached config. Useful for testing.
func Reset() {
	cache = nil
}

// Validate checks the field values with constrained ranges.
func (c *Config) Validate() error {
	if c.TitleThreshold < 0 || c.TitleThreshold > 1 {
		return fmt.Errorf("title_threshold %v outside [0, 1]", c.TitleThreshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if len(c.CSVDelimiter) > 1 {
		return fmt.Errorf("csv_delimiter must be a single character, got %q", c.CSVDelimiter)
	}
	return nil
}
