// Package config loads environment-driven service settings. The validation
// rule set lives in its own YAML file (internal/rules); this package covers
// everything else: keys, provider order, batch tuning, scheduler.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Timezone string `envconfig:"TIMEZONE" default:"Asia/Tokyo"`

	// LLM refinement. Providers is the fallback order; an empty list
	// disables refinement entirely.
	LLMProviders     []string      `envconfig:"LLM_PROVIDERS"`
	LLMModel         string        `envconfig:"LLM_MODEL"`
	LLMTemperature   float64       `envconfig:"LLM_TEMPERATURE" default:"0.7"`
	LLMMaxTokens     int           `envconfig:"LLM_MAX_TOKENS" default:"256"`
	MaxRetryAttempts int           `envconfig:"LLM_MAX_RETRY_ATTEMPTS" default:"2"`
	OpenAIAPIKey     string        `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey  string        `envconfig:"ANTHROPIC_API_KEY"`
	GroqAPIKey       string        `envconfig:"GROQ_API_KEY"`
	GeminiAPIKey     string        `envconfig:"GEMINI_API_KEY"`

	BatchConcurrency int           `envconfig:"BATCH_CONCURRENCY" default:"3"`
	BatchTimeout     time.Duration `envconfig:"BATCH_TIMEOUT" default:"120s"`

	ScheduleEnabled  bool          `envconfig:"SCHEDULE_ENABLED" default:"false"`
	ScheduleInterval time.Duration `envconfig:"SCHEDULE_INTERVAL" default:"6h"`
}

// Load reads configuration from SORACAST_-prefixed environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("soracast", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if cfg.BatchConcurrency <= 0 {
		return nil, fmt.Errorf("batch concurrency must be positive")
	}
	for _, p := range cfg.LLMProviders {
		switch p {
		case "openai", "gemini", "anthropic", "groq":
		default:
			return nil, fmt.Errorf("unknown llm provider %q", p)
		}
	}
	return &cfg, nil
}

// APIKeyFor returns the configured key for a provider name.
func (c *Config) APIKeyFor(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	case "groq":
		return c.GroqAPIKey
	case "gemini":
		return c.GeminiAPIKey
	default:
		return ""
	}
}
