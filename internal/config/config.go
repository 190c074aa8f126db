package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Hosted record store
	DataBackend string // "memory" or "rest"
	StoreURL    string
	StoreAPIKey string

	// Auth provider
	AuthURL    string
	AuthAPIKey string

	// AI analytics
	GeminiAPIKey string
	GeminiModel  string

	// Local preferences
	PrefsDBPath string

	// Query cache
	CacheTTL     time.Duration
	CacheMaxSize int

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend: getEnv("DATA_BACKEND", "memory"),
		StoreURL:    getEnv("STORE_URL", ""),
		StoreAPIKey: getEnv("STORE_API_KEY", ""),

		AuthURL:    getEnv("AUTH_URL", ""),
		AuthAPIKey: getEnv("AUTH_API_KEY", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		PrefsDBPath: getEnv("PREFS_DB_PATH", "./data/prefs.db"),

		CacheTTL:     getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheMaxSize: getEnvInt("CACHE_MAX_SIZE", 256),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "masarify"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_events"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Validate checks the whole configuration and reports every problem at
// once rather than failing on the first.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "rest"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "rest" {
		if c.StoreURL == "" {
			errors = append(errors, "STORE_URL is required when using the rest backend")
		} else if parsed, err := url.Parse(c.StoreURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid store URL '%s': must be http or https", c.StoreURL))
		}
		if c.StoreAPIKey == "" {
			errors = append(errors, "STORE_API_KEY is required when using the rest backend")
		}
	}

	if c.AuthURL != "" {
		if parsed, err := url.Parse(c.AuthURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid auth URL '%s': must be http or https", c.AuthURL))
		}
		if c.AuthAPIKey == "" {
			errors = append(errors, "AUTH_API_KEY is required when AUTH_URL is provided")
		}
	}

	if c.GeminiAPIKey != "" && c.GeminiModel == "" {
		errors = append(errors, "GEMINI_MODEL cannot be empty when GEMINI_API_KEY is provided")
	}

	if c.PrefsDBPath == "" {
		errors = append(errors, "preferences database path cannot be empty")
	} else if dir := filepath.Dir(c.PrefsDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create preferences directory '%s': %v", dir, err))
			}
		}
	}

	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if c.CacheMaxSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache max size %d: must be at least 1", c.CacheMaxSize))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
