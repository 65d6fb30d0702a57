// Package ports declares the collaborators the services and the HTTP layer
// depend on. Storage backends and the message broker implement them.
package ports

import (
	"context"
	"errors"
	"time"

	"subtrack/internal/core"
)

// ErrNotFound is returned by stores when no subscription has the given id.
var ErrNotFound = errors.New("subscription not found")

type (
	SubscriptionReader interface {
		// ListSubscriptions returns the snapshot in creation order.
		ListSubscriptions(ctx context.Context) ([]core.Subscription, error)
		GetSubscription(ctx context.Context, id string) (core.Subscription, error)
	}

	SubscriptionWriter interface {
		// CreateSubscription assigns an id when missing and returns the stored record.
		CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error)
		UpdateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error)
		DeleteSubscription(ctx context.Context, id string) error
	}

	SettingsStore interface {
		GetSettings(ctx context.Context) (core.Settings, error)
		SaveSettings(ctx context.Context, s core.Settings) error
	}

	// PauseApplier performs the scheduled active -> paused transition as a
	// conditional write. applied is false when the record was no longer
	// active with a pending pause requested at scheduledAt.
	PauseApplier interface {
		ApplyScheduledPause(ctx context.Context, id string, scheduledAt time.Time) (applied bool, err error)
	}

	EventPublisher interface {
		Publish(ctx context.Context, e core.Event) error
	}

	// Store is everything a storage backend provides.
	Store interface {
		SubscriptionReader
		SubscriptionWriter
		SettingsStore
		PauseApplier
		Close() error
	}
)

// BackendType selects the Store implementation.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
