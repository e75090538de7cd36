// Package config loads templar's tool configuration: GitHub access, cache
// behavior, and extraction defaults. It is distinct from the per-repository
// template config a source repository may ship; that one is handled by the
// extraction engine.
package config

import (
	"os"
	"path/filepath"
)

// Config is the complete tool configuration. It can be loaded from
// .templar/config.yml with environment variable overrides.
type Config struct {
	GitHub  GitHubConfig  `yaml:"github" mapstructure:"github"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
}

// GitHubConfig configures API access.
type GitHubConfig struct {
	Token string `yaml:"token" mapstructure:"token"` // personal access token; empty means anonymous
}

// CacheConfig configures the local blob cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	Location   string `yaml:"location" mapstructure:"location"`         // override default ~/.templar/cache
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"` // prune entries older than this on open
}

// ExtractConfig holds extraction defaults the CLI applies when the user does
// not pass the corresponding flag.
type ExtractConfig struct {
	Mode          string `yaml:"mode" mapstructure:"mode"` // "skeleton", "copier", or "" for automatic
	MaxFiles      int    `yaml:"max_files" mapstructure:"max_files"`
	MaxFileSizeKB int    `yaml:"max_file_size_kb" mapstructure:"max_file_size_kb"`
	FallbackMode  string `yaml:"fallback_mode" mapstructure:"fallback_mode"` // "copier" or "skip"
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Enabled:    true,
			MaxAgeDays: 30,
		},
		Extract: ExtractConfig{
			FallbackMode: "copier",
		},
	}
}

// CacheDBPath resolves the blob cache database location.
func (c *Config) CacheDBPath() string {
	if c.Cache.Location != "" {
		return filepath.Join(c.Cache.Location, "blobs.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".templar", "cache", "blobs.db")
	}
	return filepath.Join(home, ".templar", "cache", "blobs.db")
}
