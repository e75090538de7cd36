package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults, then config file, then environment (env wins).
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a configuration loader rooted at the given directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (TEMPLAR_*)
// 2. Config file (.templar/config.yml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := newViper()

	configDir := filepath.Join(l.rootDir, ".templar")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - defaults + env vars apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return finish(v)
}

// LoadFile loads configuration from an explicit file path. Unlike Load, a
// missing file is an error.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return finish(v)
}

// newViper builds a viper instance with env bindings and defaults applied.
func newViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("TEMPLAR")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g. TEMPLAR_GITHUB_TOKEN)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("github.token")

	v.BindEnv("cache.enabled")
	v.BindEnv("cache.location")
	v.BindEnv("cache.max_age_days")

	v.BindEnv("extract.mode")
	v.BindEnv("extract.max_files")
	v.BindEnv("extract.max_file_size_kb")
	v.BindEnv("extract.fallback_mode")

	setDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("github.token", defaults.GitHub.Token)

	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.location", defaults.Cache.Location)
	v.SetDefault("cache.max_age_days", defaults.Cache.MaxAgeDays)

	v.SetDefault("extract.mode", defaults.Extract.Mode)
	v.SetDefault("extract.max_files", defaults.Extract.MaxFiles)
	v.SetDefault("extract.max_file_size_kb", defaults.Extract.MaxFileSizeKB)
	v.SetDefault("extract.fallback_mode", defaults.Extract.FallbackMode)
}

// LoadConfig is a convenience function that creates a loader rooted at the
// current working directory and loads config.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}
