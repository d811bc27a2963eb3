package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration taken from the environment. Command
// line flags override it.
type Config struct {
	Logging  LoggingConfig
	Explorer ExplorerConfig
	Color    ColorConfig
	Foundry  FoundryConfig
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string // "text" or "json"
}

// ExplorerConfig holds block explorer client settings
type ExplorerConfig struct {
	APIKey            string
	URL               string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// ColorConfig holds terminal color settings
type ColorConfig struct {
	// Disabled is set by the NO_COLOR convention (https://no-color.org).
	Disabled bool
}

// FoundryConfig holds Foundry project settings
type FoundryConfig struct {
	Profile string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  getEnv("ETHLIFT_LOG_LEVEL", "warn"),
			Format: getEnv("ETHLIFT_LOG_FORMAT", "text"),
		},
		Explorer: ExplorerConfig{
			APIKey:            getEnv("ETHERSCAN_API_KEY", ""),
			URL:               getEnv("ETHLIFT_EXPLORER_URL", "https://api.etherscan.io/v2/api"),
			Timeout:           getEnvDuration("ETHLIFT_EXPLORER_TIMEOUT", 30*time.Second),
			RequestsPerSecond: getEnvFloat("ETHLIFT_EXPLORER_RPS", 5),
		},
		Color: ColorConfig{
			Disabled: os.Getenv("NO_COLOR") != "",
		},
		Foundry: FoundryConfig{
			Profile: getEnv("FOUNDRY_PROFILE", "default"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or a plain number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if i, err := strconv.Atoi(value); err == nil && i > 0 {
		return time.Duration(i) * time.Second
	}
	return defaultValue
}
