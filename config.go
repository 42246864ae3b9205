package coachlens

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UpstreamConfig points the proxy at an OpenAI-compatible model endpoint.
type UpstreamConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// ServerConfig configures the coachd proxy server.
type ServerConfig struct {
	Addr     string         `yaml:"addr"`
	Upstream UpstreamConfig `yaml:"upstream"`
	// RequestsPerMinute is the per-client rate limit; zero disables limiting.
	RequestsPerMinute int `yaml:"requests_per_minute"`
	// MaxBatchSize caps how many prompts one batch request may carry.
	MaxBatchSize int `yaml:"max_batch_size"`
}

// DefaultServerConfig returns the baseline proxy configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:              ":8787",
		RequestsPerMinute: 50,
		MaxBatchSize:      5,
		Upstream: UpstreamConfig{
			Model: "gpt-4o-mini",
		},
	}
}

// LoadServerConfig reads a YAML config file, layering it over the defaults.
// An empty path returns the defaults. The COACHD_API_KEY environment
// variable overrides the configured upstream key.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if key := os.Getenv("COACHD_API_KEY"); key != "" {
		cfg.Upstream.APIKey = key
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8787"
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 5
	}
	return cfg, nil
}

// Validate checks that the config can actually serve requests.
func (c ServerConfig) Validate() error {
	if c.Upstream.APIKey == "" {
		return fmt.Errorf("upstream API key is required (set upstream.api_key or COACHD_API_KEY)")
	}
	if c.Upstream.Model == "" {
		return fmt.Errorf("upstream model is required")
	}
	return nil
}
