// Package config loads mention engine settings from a JSON5 file with
// environment overrides, and hot-reloads the file on change.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/titanous/json5"
)

// Config is the engine configuration. All fields have working defaults; an
// absent config file is not an error.
type Config struct {
	// ProjectPath scopes file, skill and agent discovery. Defaults to the
	// process working directory.
	ProjectPath string `json:"projectPath"`

	// DefaultLimit caps a search result page when the request does not.
	DefaultLimit int `json:"defaultLimit"`

	Cache     CacheConfig `json:"cache"`
	Usage     UsageConfig `json:"usage"`
	SkillDirs []string    `json:"skillDirs"`
	AgentDirs []string    `json:"agentDirs"`

	// DisabledProviders are provider ids excluded from registration.
	DisabledProviders []string `json:"disabledProviders"`
}

// CacheConfig controls the per-provider search result cache.
type CacheConfig struct {
	Enabled    bool `json:"enabled"`
	Size       int  `json:"size"`
	TTLSeconds int  `json:"ttlSeconds"`
	// WatchGit invalidates the cache when the repository state changes.
	WatchGit bool `json:"watchGit"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// UsageConfig controls the frecency store.
type UsageConfig struct {
	Enabled bool   `json:"enabled"`
	DBPath  string `json:"dbPath"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultLimit: 20,
		Cache: CacheConfig{
			Enabled:    true,
			Size:       256,
			TTLSeconds: 30,
			WatchGit:   true,
		},
		Usage: UsageConfig{Enabled: true},
	}
}

// Load reads the config file at path, layers it over the defaults and
// applies environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fine, defaults apply
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := json5.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDerived()
	return cfg, nil
}

// ApplyEnvOverrides lets the environment win over the file for the settings
// that make sense per invocation.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("MENTION_PROJECT_PATH"); v != "" {
		c.ProjectPath = v
	}
	if v := os.Getenv("MENTION_DEFAULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.DefaultLimit = n
		}
	}
	if v := os.Getenv("MENTION_USAGE_DB"); v != "" {
		c.Usage.DBPath = v
	}
	if v := os.Getenv("MENTION_CACHE_DISABLED"); v == "1" || v == "true" {
		c.Cache.Enabled = false
	}
}

func (c *Config) fillDerived() {
	if c.ProjectPath == "" {
		if wd, err := os.Getwd(); err == nil {
			c.ProjectPath = wd
		}
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 20
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = 256
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = 30
	}
	if c.Usage.Enabled && c.Usage.DBPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Usage.DBPath = filepath.Join(home, ".mention", "usage.db")
		} else {
			c.Usage.Enabled = false
		}
	}
}

// ProviderDisabled reports whether the given provider id is switched off.
func (c *Config) ProviderDisabled(id string) bool {
	norm := NormalizeProviderID(id)
	for _, d := range c.DisabledProviders {
		if NormalizeProviderID(d) == norm {
			return true
		}
	}
	return false
}
