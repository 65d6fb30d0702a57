// Package cli provides the initialization shared by cmd/subtrack,
// cmd/pause-worker and cmd/subctl.
package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"subtrack/internal/backend"
	"subtrack/internal/config"
	"subtrack/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from the configured level and sets
// it as the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logger := log.NewWithLevel(cfg.LogLevel, component)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Exits the process on validation failure.
func LoadAndValidateConfig(component string) (*config.Config, *log.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg, component)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenBackend opens the configured store and publisher.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.Result, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).Create(ctx, backendCfg)
}

// MustOpenBackend is OpenBackend for daemons: it exits on failure.
func MustOpenBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) *backend.Result {
	res, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return res
}
