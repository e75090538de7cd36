package extract

import (
	"encoding/json"
	"fmt"
)

// RepoConfigPath is the conventional location of a repository-supplied
// template configuration.
const RepoConfigPath = ".templar.json"

// RepoConfig is the optional per-repository override payload. When present
// it takes precedence over computed defaults but never over explicit caller
// options.
type RepoConfig struct {
	Instructions    []string          `json:"instructions,omitempty"`
	Placeholders    map[string]string `json:"placeholders,omitempty"`
	IncludePatterns []string          `json:"includePatterns,omitempty"`
	ExcludePatterns []string          `json:"excludePatterns,omitempty"`
	Mode            string            `json:"mode,omitempty"`
	MaxFiles        int               `json:"maxFiles,omitempty"`
	MaxFileSizeKB   int               `json:"maxFileSizeKb,omitempty"`
}

// ParseRepoConfig decodes a repository-supplied config payload. A parse
// failure is not fatal upstream; callers drop the config and record a
// warning.
func ParseRepoConfig(data []byte) (*RepoConfig, error) {
	var rc RepoConfig
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", RepoConfigPath, err)
	}
	if rc.Mode != "" && rc.Mode != string(ModeSkeleton) && rc.Mode != string(ModeCopier) {
		return nil, fmt.Errorf("parse %s: unknown mode %q", RepoConfigPath, rc.Mode)
	}
	return &rc, nil
}
