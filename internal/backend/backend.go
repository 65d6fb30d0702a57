// Package backend builds the storage backend and event publisher selected
// by the application configuration.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"subtrack/internal/amqp"
	"subtrack/internal/config"
	"subtrack/internal/core"
	"subtrack/internal/ports"
	"subtrack/internal/seed"
	"subtrack/internal/storage"
	"subtrack/internal/store/memory"
)

// Config holds what is needed to open a backend.
type Config struct {
	Type            ports.BackendType
	SQLiteDBPath    string
	SeedFile        string
	DefaultCurrency string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	backendType := ports.BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return Config{
		Type:            backendType,
		SQLiteDBPath:    appConfig.SQLiteDBPath,
		SeedFile:        appConfig.SeedFile,
		DefaultCurrency: appConfig.DefaultCurrency,
		AMQPURL:         appConfig.AMQPURL,
		AMQPExchange:    appConfig.AMQPExchange,
		AMQPQueue:       appConfig.AMQPQueue,
	}, nil
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result is an opened backend. Publisher is nil when AMQP is disabled or
// unreachable at startup.
type Result struct {
	Store     ports.Store
	Publisher ports.EventPublisher
	AMQP      *amqp.Client
	Cleanup   CleanupFunc
}

type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create opens the store and, when configured, the AMQP publisher.
func (f *Factory) Create(ctx context.Context, cfg Config) (*Result, error) {
	store, err := f.openStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := applyDefaultCurrency(ctx, store, cfg.DefaultCurrency); err != nil {
		_ = store.Close()
		return nil, err
	}

	res := &Result{Store: store}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			// Only assign a non-nil client so the interface stays nil otherwise.
			res.AMQP = client
			res.Publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	res.Cleanup = func() error {
		var errs []error
		if res.AMQP != nil {
			errs = append(errs, res.AMQP.Close())
		}
		errs = append(errs, store.Close())
		return errors.Join(errs...)
	}
	return res, nil
}

func (f *Factory) openStore(cfg Config) (ports.Store, error) {
	switch cfg.Type {
	case ports.SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return repo, nil
	case ports.MemoryBackend:
		if cfg.SeedFile == "" {
			f.logger.Info("Initialized memory backend")
			return memory.New(), nil
		}
		doc, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed file: %w", err)
		}
		f.logger.Info("Initialized memory backend",
			"seed_file", cfg.SeedFile,
			"subscriptions", len(doc.Subscriptions))
		return memory.NewFromSeed(doc), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

// applyDefaultCurrency writes the configured currency into a fresh store,
// one that holds no subscriptions and untouched default settings.
func applyDefaultCurrency(ctx context.Context, store ports.Store, code string) error {
	if code == "" || code == core.DefaultCurrency {
		return nil
	}
	settings, err := store.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	if settings != core.DefaultSettings() {
		return nil
	}
	subs, err := store.ListSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}
	if len(subs) > 0 {
		return nil
	}
	settings.Currency = code
	return store.SaveSettings(ctx, settings)
}
