package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// GeminiConfig holds settings for the upstream Gemini completion service.
type GeminiConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// StripeConfig holds the checkout and webhook credentials. Both keys are
// optional: the free evaluation path works without Stripe, and the payment
// handlers report themselves unavailable when the keys are missing.
type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	PriceCents    int64  `yaml:"price_cents"`
}

// UsageConfig selects the backing store for the per-client usage gate.
type UsageConfig struct {
	Store    string `yaml:"store"`
	RedisURL string `yaml:"redis_url"`
}

// Config holds the configuration for the PromptIQ server.
type Config struct {
	Gemini GeminiConfig `yaml:"gemini"`
	Stripe StripeConfig `yaml:"stripe"`
	Usage  UsageConfig  `yaml:"usage"`
	Port   int          `yaml:"port"`
	Debug  bool         `yaml:"debug"`
}

// LoadConfig reads and parses the configuration file. It returns the config
// and a potential warning message. A missing file is not an error; the
// service can run entirely on environment variables.
var LoadConfig = func(path string) (*Config, string, error) {
	var config Config
	var warning string

	// A .env file is a convenience for local development only.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, "", fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables if they exist
	if key := os.Getenv("PROMPTIQ_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if model := os.Getenv("PROMPTIQ_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if key := os.Getenv("PROMPTIQ_STRIPE_SECRET_KEY"); key != "" {
		config.Stripe.SecretKey = key
	}
	if secret := os.Getenv("PROMPTIQ_STRIPE_WEBHOOK_SECRET"); secret != "" {
		config.Stripe.WebhookSecret = secret
	}
	if store := os.Getenv("PROMPTIQ_USAGE_STORE"); store != "" {
		config.Usage.Store = store
	}
	if url := os.Getenv("PROMPTIQ_USAGE_REDIS_URL"); url != "" {
		config.Usage.RedisURL = url
	}
	if port := os.Getenv("PROMPTIQ_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Port = p
		}
	}
	if debug := os.Getenv("PROMPTIQ_DEBUG"); debug != "" {
		config.Debug = (debug == "true")
	}

	// Set default values
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Gemini.Model == "" {
		config.Gemini.Model = "gemini-1.5-pro"
		warning = "gemini.model not set, using default gemini-1.5-pro"
	}
	if config.Gemini.TimeoutSeconds == 0 {
		config.Gemini.TimeoutSeconds = 60
	}
	if config.Stripe.PriceCents == 0 {
		config.Stripe.PriceCents = 999
	}
	if config.Usage.Store == "" {
		config.Usage.Store = "memory"
	}

	// Final validation after overrides
	if config.Gemini.APIKey == "" {
		return nil, "", fmt.Errorf("gemini api key must be configured in %s or via PROMPTIQ_GEMINI_API_KEY", path)
	}
	switch config.Usage.Store {
	case "memory":
	case "redis":
		if config.Usage.RedisURL == "" {
			return nil, "", fmt.Errorf("usage.redis_url must be configured when usage.store is redis")
		}
	default:
		return nil, "", fmt.Errorf("unsupported usage store: %s", config.Usage.Store)
	}

	return &config, warning, nil
}
