package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"prismis/internal/domain/entity"
)

// Default values applied to any [daemon] key absent from config.toml.
const (
	DefaultFetchInterval   = 30
	DefaultMaxItemsPerFeed = 50
	DefaultMaxDaysLookback = 7
)

// DaemonConfig mirrors the [daemon] table: how often the pipeline runs and
// how much of each source it is willing to pull per cycle.
type DaemonConfig struct {
	FetchIntervalMinutes int `toml:"fetch_interval"`
	MaxItemsPerFeed      int `toml:"max_items_per_feed"`
	MaxDaysLookback      int `toml:"max_days_lookback"`
}

// LLMConfig mirrors the [llm] table. APIKey is the raw config.toml value —
// either a literal key or an "env:VAR" reference — and is dereferenced by
// each analysis package's own ResolveAPIKey at client-construction time,
// not here.
type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
}

// RemoteConfig mirrors the [remote] table. It is consumed by the CLI, not
// the daemon core, but lives here so the config file has one schema.
type RemoteConfig struct {
	URL string `toml:"url"`
	Key string `toml:"key"`
}

// Config is the decoded form of config.toml.
type Config struct {
	Daemon  DaemonConfig       `toml:"daemon"`
	LLM     LLMConfig          `toml:"llm"`
	Remote  RemoteConfig       `toml:"remote"`
	Context entity.UserContext `toml:"context"`
}

// Load decodes the TOML file at path, applies defaults to any [daemon] key
// left at its zero value, and validates the result. A missing or malformed
// file, or an out-of-range integer, is a ConfigError: fatal at startup.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Daemon.FetchIntervalMinutes == 0 {
		c.Daemon.FetchIntervalMinutes = DefaultFetchInterval
	}
	if c.Daemon.MaxItemsPerFeed == 0 {
		c.Daemon.MaxItemsPerFeed = DefaultMaxItemsPerFeed
	}
	if c.Daemon.MaxDaysLookback == 0 {
		c.Daemon.MaxDaysLookback = DefaultMaxDaysLookback
	}
}

// Validate fails loudly on out-of-range integers. The max_items_per_feed
// message is load-bearing: tooling and tests match on its exact wording.
func (c *Config) Validate() error {
	if c.Daemon.MaxItemsPerFeed < 1 || c.Daemon.MaxItemsPerFeed > 100 {
		return fmt.Errorf("max_items must be between 1 and 100")
	}
	if c.Daemon.FetchIntervalMinutes < 1 {
		return fmt.Errorf("fetch_interval must be at least 1 minute")
	}
	if c.Daemon.MaxDaysLookback < 1 {
		return fmt.Errorf("max_days_lookback must be at least 1")
	}
	return nil
}

// ConfigPath resolves config.toml's location: $XDG_CONFIG_HOME/prismis,
// falling back to ~/.config/prismis.
func ConfigPath() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prismis", "config.toml"), nil
}

// DataPath resolves prismis.db's location: $XDG_DATA_HOME/prismis, falling
// back to ~/.local/share/prismis.
func DataPath() (string, error) {
	dir, err := xdgDir("XDG_DATA_HOME", ".local/share")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prismis", "prismis.db"), nil
}

// StatePath resolves the daemon's PID lock location:
// $XDG_STATE_HOME/prismis/daemon.pid, falling back to ~/.local/state/prismis.
func StatePath() (string, error) {
	dir, err := xdgDir("XDG_STATE_HOME", ".local/state")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prismis", "daemon.pid"), nil
}

func xdgDir(envVar, homeRelative string) (string, error) {
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, homeRelative), nil
}
