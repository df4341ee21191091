package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/snipstash/snipstash/internal/entitlement"
)

// DefaultRecentLimit is how many copy events the recent view shows.
const DefaultRecentLimit = 5

// Config holds application configuration.
type Config struct {
	// FreeSnippetLimit is the snippet cap applied when the user is not
	// entitled. 0 means use the built-in default.
	FreeSnippetLimit int `json:"free_snippet_limit,omitempty"`

	// RecentLimit is the default number of entries returned by the
	// recently-used view. 0 means use the built-in default.
	RecentLimit int `json:"recent_limit,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from
	// registration. Unknown tool names are ignored with a warning.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		FreeSnippetLimit: entitlement.FreeSnippetLimit,
		RecentLimit:      DefaultRecentLimit,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist. Zero-valued numeric
// fields fall back to defaults so a partial file stays valid.
func Load(baseDir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.FreeSnippetLimit <= 0 {
		cfg.FreeSnippetLimit = entitlement.FreeSnippetLimit
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = DefaultRecentLimit
	}

	return cfg, nil
}
