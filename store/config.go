package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultDatabaseURL is the base URL used when none is configured.
const DefaultDatabaseURL = "https://canopy-mock.local"

// Config holds configuration for the Store.
type Config struct {
	// DatabaseURL is the base of every reference URL. RefFromURL only
	// accepts URLs below it. A trailing slash is removed.
	// Default: DefaultDatabaseURL
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// SeedFile is an optional YAML or JSON document loaded as the initial
	// tree. Loading it does not fire listeners, since none exist yet.
	SeedFile string `yaml:"seed_file" json:"seed_file"`

	// StartOffline starts the store in offline mode. Offline only affects
	// Online(); writes and events behave the same.
	StartOffline bool `yaml:"start_offline" json:"start_offline"`
}

// DefaultConfig returns the configuration of a store with no seed data.
func DefaultConfig() Config {
	return Config{
		DatabaseURL: DefaultDatabaseURL,
	}
}

// validate fills defaults and normalizes values.
func (c *Config) validate() {
	c.DatabaseURL = strings.TrimRight(strings.TrimSpace(c.DatabaseURL), "/")
	if c.DatabaseURL == "" {
		c.DatabaseURL = DefaultDatabaseURL
	}
}

// LoadConfig reads a Config from a YAML or JSON file, then applies the
// CANOPY_DATABASE_URL and CANOPY_SEED_FILE environment overrides. A missing
// file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		// Try YAML first, then JSON
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			if jsonErr := json.Unmarshal(data, &cfg); jsonErr != nil {
				return cfg, fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
			}
		}
	}

	if v := os.Getenv("CANOPY_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("CANOPY_SEED_FILE"); v != "" {
		cfg.SeedFile = v
	}

	cfg.validate()
	return cfg, nil
}

// loadSeed reads the seed document. YAML is a superset of JSON, so one
// decoder serves both formats.
func loadSeed(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return stringKeys(doc), nil
}

// stringKeys rewrites YAML mappings with non-string keys (such as `100: x`)
// into string-keyed maps.
func stringKeys(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, child := range x {
			x[k] = stringKeys(child)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, child := range x {
			out[fmt.Sprint(k)] = stringKeys(child)
		}
		return out
	case []any:
		for i, child := range x {
			x[i] = stringKeys(child)
		}
		return x
	}
	return v
}
