package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zen-systems/listingsmith/pkg/retry"
)

// DefaultProvider is used when no provider is configured.
const DefaultProvider = "google"

// GenerationConfig is the structure of generation.yaml.
type GenerationConfig struct {
	Provider string      `yaml:"provider,omitempty"`
	Model    string      `yaml:"model,omitempty"`
	Retry    RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig defines retry and backoff behavior.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts,omitempty"`
	BaseDelayMs      int `yaml:"base_delay_ms,omitempty"`
	RateLimitFloorMs int `yaml:"rate_limit_floor_ms,omitempty"`
}

// BaseDelay returns the base backoff as a duration.
func (r RetryConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMs) * time.Millisecond
}

// RateLimitFloor returns the minimum rate-limit backoff as a duration.
func (r RetryConfig) RateLimitFloor() time.Duration {
	return time.Duration(r.RateLimitFloorMs) * time.Millisecond
}

// LoadGenerationConfig reads generation settings from a YAML file.
func LoadGenerationConfig(path string) (*GenerationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg GenerationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyGenerationDefaults(&cfg)
	return &cfg, nil
}

// DefaultGenerationConfig returns the built-in generation settings.
func DefaultGenerationConfig() *GenerationConfig {
	cfg := &GenerationConfig{}
	applyGenerationDefaults(cfg)
	return cfg
}

// loadGeneration reads an explicit path strictly and the default path only
// when it exists.
func loadGeneration(path string) (*GenerationConfig, error) {
	if path != "" {
		cfg, err := LoadGenerationConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load generation config from %s: %w", path, err)
		}
		return cfg, nil
	}

	path = defaultGenerationPath()
	if path == "" {
		return DefaultGenerationConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return DefaultGenerationConfig(), nil
	}
	cfg, err := LoadGenerationConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load generation config: %w", err)
	}
	return cfg, nil
}

func applyGenerationDefaults(cfg *GenerationConfig) {
	if cfg == nil {
		return
	}
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = retry.DefaultMaxAttempts
	}
	if cfg.Retry.BaseDelayMs <= 0 {
		cfg.Retry.BaseDelayMs = int(retry.DefaultBaseDelay / time.Millisecond)
	}
	if cfg.Retry.RateLimitFloorMs <= 0 {
		cfg.Retry.RateLimitFloorMs = int(retry.DefaultRateLimitFloor / time.Millisecond)
	}
}
