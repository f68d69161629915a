// Package app carries the ambient pieces the renderer itself stays free of:
// configuration loading and diagnostic logging.
package app

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config are the file-configurable renderer defaults. Environment variables
// (RUNVIEW_*) override these at presenter construction.
type Config struct {
	Theme       string `yaml:"theme"`
	Verbose     bool   `yaml:"verbose"`
	Emoji       *bool  `yaml:"emoji"`
	PersistLive *bool  `yaml:"persist_live"`
	ToolPanels  bool   `yaml:"tool_panels"`
	MaxSteps    int    `yaml:"max_steps"`
	BufferCap   int    `yaml:"buffer_cap"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Theme:    "dark",
		MaxSteps: 200,
	}
}

// DefaultConfigPath resolves the per-user config file location.
func DefaultConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "runview", "config.yaml")
}

// LoadConfig reads a YAML config file, filling defaults for anything unset.
// A missing file is not an error; a malformed one is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Theme == "" {
		cfg.Theme = "dark"
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 200
	}
	if cfg.BufferCap < 0 {
		cfg.BufferCap = 0
	}
	return cfg, nil
}

// EmojiEnabled resolves the tri-state emoji setting (default on).
func (c Config) EmojiEnabled() bool {
	return c.Emoji == nil || *c.Emoji
}

// PersistEnabled resolves the tri-state persist setting (default on).
func (c Config) PersistEnabled() bool {
	return c.PersistLive == nil || *c.PersistLive
}
