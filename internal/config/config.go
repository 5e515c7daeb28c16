package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the adapters need, loaded from environment
// variables. No package-level state: callers construct it once in main and
// pass it down.
type Config struct {
	AppEnv string

	SunoAPIKey   string
	SunoBaseURL  string
	SunoFileHost string

	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicModel   string

	RequestTimeout  time.Duration
	DownloadTimeout time.Duration
	DownloadRetries int
}

// Load reads .env if present, then the environment, applying defaults.
func Load() (*Config, error) {
	// Missing .env is fine; variables may be set in the environment.
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		SunoAPIKey:       os.Getenv("SUNO_API_KEY"),
		SunoBaseURL:      getEnv("SUNO_BASE_URL", "https://apibox.erweima.ai/api/v1"),
		SunoFileHost:     getEnv("SUNO_FILE_HOST", "https://apiboxfiles.erweima.ai"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-opus-20240229"),
		RequestTimeout:   time.Second * time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)),
		DownloadTimeout:  time.Second * time.Duration(getEnvInt("DOWNLOAD_TIMEOUT_SECONDS", 60)),
		DownloadRetries:  getEnvInt("DOWNLOAD_RETRIES", 5),
	}

	if cfg.SunoAPIKey == "" {
		return nil, fmt.Errorf("SUNO_API_KEY is required")
	}

	return cfg, nil
}

// RequireAnthropic checks that the lyrics-generation credentials are set.
// Instrumental runs skip the LLM entirely, so the key is only validated
// when lyrics are actually needed.
func (c *Config) RequireAnthropic() error {
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required unless --instrumental is set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
