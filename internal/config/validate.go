package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMode indicates an unsupported extraction mode
	ErrInvalidMode = errors.New("invalid extraction mode")

	// ErrInvalidFallback indicates an unsupported fallback mode
	ErrInvalidFallback = errors.New("invalid fallback mode")

	// ErrInvalidLimit indicates a negative file or size limit
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	switch cfg.Extract.Mode {
	case "", "skeleton", "copier":
	default:
		return fmt.Errorf("%w: %q (expected \"skeleton\", \"copier\", or empty)", ErrInvalidMode, cfg.Extract.Mode)
	}

	switch cfg.Extract.FallbackMode {
	case "", "copier", "skip":
	default:
		return fmt.Errorf("%w: %q (expected \"copier\" or \"skip\")", ErrInvalidFallback, cfg.Extract.FallbackMode)
	}

	if cfg.Extract.MaxFiles < 0 {
		return fmt.Errorf("%w: max_files must not be negative", ErrInvalidLimit)
	}
	if cfg.Extract.MaxFileSizeKB < 0 {
		return fmt.Errorf("%w: max_file_size_kb must not be negative", ErrInvalidLimit)
	}

	if cfg.Cache.MaxAgeDays < 0 {
		return fmt.Errorf("%w: max_age_days must not be negative", ErrInvalidCacheSettings)
	}

	return nil
}
