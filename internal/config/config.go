package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"

	"subtrack/internal/ports"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// Memory backend seed (YAML), optional
	SeedFile string

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Scheduled pause trigger
	PauseCheckInterval time.Duration

	// Dashboard
	UpcomingLimit   int
	DefaultCurrency string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "3001"),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/subtrack.db"),
		SeedFile:     getEnv("MEMORY_SEED_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "subtrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "subscription_events"),

		PauseCheckInterval: getEnvDuration("PAUSE_CHECK_INTERVAL", time.Hour),

		UpcomingLimit:   getEnvInt("UPCOMING_LIMIT", 5),
		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "EUR")),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	backend := ports.BackendType(c.DataBackend)
	if !backend.IsValid() {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be %s or %s", c.DataBackend, ports.SQLiteBackend, ports.MemoryBackend))
	}

	if backend == ports.SQLiteBackend {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// The seed file is only read by the memory backend
	if backend == ports.MemoryBackend && c.SeedFile != "" {
		if _, err := os.Stat(c.SeedFile); err != nil {
			errors = append(errors, fmt.Sprintf("memory seed file '%s' is not readable: %v", c.SeedFile, err))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate scheduled pause trigger
	if c.PauseCheckInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid pause check interval %v: must be at least 1 minute", c.PauseCheckInterval))
	} else if c.PauseCheckInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid pause check interval %v: must be at most 24 hours", c.PauseCheckInterval))
	}

	if c.UpcomingLimit < 1 || c.UpcomingLimit > 100 {
		errors = append(errors, fmt.Sprintf("invalid upcoming limit %d: must be between 1 and 100", c.UpcomingLimit))
	}

	if _, err := currency.ParseISO(c.DefaultCurrency); err != nil {
		errors = append(errors, fmt.Sprintf("invalid default currency '%s': must be an ISO 4217 code", c.DefaultCurrency))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AMQPEnabled reports whether lifecycle events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
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
