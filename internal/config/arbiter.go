package config

import (
	"os"
	"strconv"
)

// ArbiterConfig holds all arbitration-oracle configuration
type ArbiterConfig struct {
	APIKey  string `json:"-"` // Never serialize
	BaseURL string `json:"baseUrl"`

	// Model is the Gemini model used to break insufficient-vs-missing
	// conflicts (needs to be fast; one call per conflicting requirement)
	Model string `json:"model"`

	TimeoutMS   int `json:"timeoutMs"`
	MaxAttempts int `json:"maxAttempts"`
	MaxInFlight int `json:"maxInFlight"`
}

// DefaultArbiterConfig returns the default oracle configuration
func DefaultArbiterConfig() *ArbiterConfig {
	return &ArbiterConfig{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		BaseURL:     "https://generativelanguage.googleapis.com/v1beta/models",
		Model:       getEnvOrDefault("GEMINI_MODEL_ARBITER", "gemini-2.0-flash"),
		TimeoutMS:   getEnvIntOrDefault("ARBITER_TIMEOUT_MS", 10000),
		MaxAttempts: getEnvIntOrDefault("ARBITER_MAX_ATTEMPTS", 3),
		MaxInFlight: getEnvIntOrDefault("ARBITER_MAX_IN_FLIGHT", 4),
	}
}

// IsEnabled returns true if the real oracle is configured; otherwise the
// deterministic rule-based arbiter is used
func (c *ArbiterConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for the configured model
func (c *ArbiterConfig) ModelEndpoint() string {
	return c.BaseURL + "/" + c.Model + ":generateContent"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
