package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zen-systems/listingsmith/pkg/adapter"
	"github.com/zen-systems/listingsmith/pkg/retry"
)

// Config holds the application configuration.
type Config struct {
	Provider        string
	Model           string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	DeepSeekAPIKey  string
	DatabaseURL     string
	Addr            string
	Generation      *GenerationConfig
}

// Load reads .env, the generation file and environment variables.
// Environment variables take precedence over the file. An empty path
// means ~/.listingsmith/generation.yaml when it exists.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	gen, err := loadGeneration(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Provider:        strings.ToLower(getEnvOrDefault("LISTINGSMITH_PROVIDER", gen.Provider)),
		Model:           getEnvOrDefault("LISTINGSMITH_MODEL", gen.Model),
		GeminiAPIKey:    getEnvOrDefault("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		DeepSeekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Addr:            getEnvOrDefault("LISTINGSMITH_ADDR", ":8080"),
		Generation:      gen,
	}
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	return cfg, nil
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case "google":
		return c.GeminiAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	case "deepseek":
		return c.DeepSeekAPIKey
	case "mock":
		return "mock"
	default:
		return ""
	}
}

// HasCredential reports whether the configured provider has an API key.
func (c *Config) HasCredential() bool {
	return c.APIKey() != ""
}

// NewAdapter builds the adapter for the configured provider. It returns a
// nil adapter and no error when the credential is missing, so callers can
// still start and report the missing configuration per request.
func (c *Config) NewAdapter(ctx context.Context) (adapter.Adapter, error) {
	key := c.APIKey()
	if key == "" {
		if !knownProvider(c.Provider) {
			return nil, fmt.Errorf("unknown provider %q", c.Provider)
		}
		return nil, nil
	}

	var (
		a   adapter.Adapter
		err error
	)
	switch c.Provider {
	case "google":
		a, err = adapter.NewGoogleAdapter(ctx, key)
	case "openai":
		a, err = adapter.NewOpenAIAdapter(key)
	case "anthropic":
		a, err = adapter.NewAnthropicAdapter(key)
	case "deepseek":
		a, err = adapter.NewDeepSeekAdapter(key)
	case "mock":
		a = adapter.NewMockAdapter()
	default:
		return nil, fmt.Errorf("unknown provider %q", c.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s adapter: %w", c.Provider, err)
	}
	return a, nil
}

// RetryController builds the retry controller from the generation file.
func (c *Config) RetryController(logger *zap.Logger) *retry.Controller {
	ctrl := retry.NewController(logger)
	if c.Generation != nil {
		ctrl.MaxAttempts = c.Generation.Retry.MaxAttempts
		ctrl.BaseDelay = c.Generation.Retry.BaseDelay()
		ctrl.RateLimitFloor = c.Generation.Retry.RateLimitFloor()
	}
	return ctrl
}

func knownProvider(name string) bool {
	switch name {
	case "google", "openai", "anthropic", "deepseek", "mock":
		return true
	}
	return false
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func defaultGenerationPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".listingsmith", "generation.yaml")
}
