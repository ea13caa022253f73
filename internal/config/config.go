// Package config loads and persists the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// API endpoints and client behavior
	API APIConfig `toml:"api"`

	// Cache database configuration
	Cache CacheConfig `toml:"cache"`

	// Analyzer defaults
	Analyzer AnalyzerConfig `toml:"analyzer"`

	// Planner defaults
	Planner PlannerConfig `toml:"planner"`
}

// APIConfig contains remote data source settings.
type APIConfig struct {
	ScryfallBaseURL string `toml:"scryfall_base_url"` // Scryfall API root
	MTGJSONBaseURL  string `toml:"mtgjson_base_url"`  // MTGJSON API root
	UserAgent       string `toml:"user_agent"`        // Sent with every request
	RateLimit       string `toml:"rate_limit"`        // Min delay between requests (e.g., "100ms")
}

// CacheConfig contains cache database settings.
type CacheConfig struct {
	DBPath string `toml:"db_path"` // SQLite cache path ("" = default location)
	TTL    string `toml:"ttl"`     // Cached set data validity (e.g., "168h")
}

// AnalyzerConfig contains set-analysis defaults.
type AnalyzerConfig struct {
	Weighting string `toml:"weighting"` // "probability", "rarity" or "count"

	// RarityWeights overrides the static fallback table, keyed by rarity name
	// ("common", "uncommon", "rare", "mythic", "special", "unknown").
	// Empty means built-in defaults.
	RarityWeights map[string]float64 `toml:"rarity_weights"`
}

// PlannerConfig contains sort-planner defaults.
type PlannerConfig struct {
	PileThreshold int    `toml:"pile_threshold"` // Min copies per letter pile
	PileMode      string `toml:"pile_mode"`      // "simple", "grouped" or "optimal"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			ScryfallBaseURL: "https://api.scryfall.com",
			MTGJSONBaseURL:  "https://mtgjson.com/api/v5",
			UserAgent:       "mtg-sorter/1.0",
			RateLimit:       "100ms",
		},
		Cache: CacheConfig{
			DBPath: "",
			TTL:    "168h",
		},
		Analyzer: AnalyzerConfig{
			Weighting: "probability",
		},
		Planner: PlannerConfig{
			PileThreshold: 20,
			PileMode:      "grouped",
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".mtg-sorter")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// DefaultDBPath returns the default cache database location.
func DefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mtg-sorter", "cache.db"), nil
}

// Load loads the configuration from disk. Returns default config if the file
// doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.API.RateLimit); err != nil {
		return fmt.Errorf("invalid rate limit %q: %w", c.API.RateLimit, err)
	}

	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.Cache.TTL, err)
	}

	switch c.Analyzer.Weighting {
	case "probability", "rarity", "count":
	default:
		return fmt.Errorf("invalid weighting mode %q", c.Analyzer.Weighting)
	}

	for rarity, weight := range c.Analyzer.RarityWeights {
		if weight < 0 {
			return fmt.Errorf("rarity weight for %q cannot be negative: %g", rarity, weight)
		}
	}

	switch c.Planner.PileMode {
	case "simple", "grouped", "optimal":
	default:
		return fmt.Errorf("invalid pile mode %q", c.Planner.PileMode)
	}

	if c.Planner.PileThreshold < 0 {
		return fmt.Errorf("pile threshold cannot be negative: %d", c.Planner.PileThreshold)
	}

	return nil
}

// GetRateLimit returns the API rate limit as a duration.
func (c *Config) GetRateLimit() (time.Duration, error) {
	return time.ParseDuration(c.API.RateLimit)
}

// GetCacheTTL returns the cache TTL as a duration.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}
