package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"subtrack/internal/core"
	"subtrack/internal/log"
	"subtrack/internal/metrics"
	"subtrack/internal/ports"
)

// ErrInvalidInput wraps every validation failure reported by the service.
var ErrInvalidInput = errors.New("invalid input")

// Repository is the storage the subscription service works against.
type Repository interface {
	ports.SubscriptionReader
	ports.SubscriptionWriter
	ports.SettingsStore
}

// SubscriptionService orchestrates subscription changes across the store
// and the event publisher. The store is the source of truth: a failed
// publish is logged and never fails the request.
type SubscriptionService struct {
	store     Repository
	publisher ports.EventPublisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*SubscriptionService)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *SubscriptionService) { s.now = now }
}

// WithMetrics updates the spend gauges whenever a dashboard is built.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *SubscriptionService) { s.metrics = m }
}

// NewSubscriptionService returns a service over store. publisher may be nil.
func NewSubscriptionService(store Repository, publisher ports.EventPublisher, opts ...Option) *SubscriptionService {
	s := &SubscriptionService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SubscriptionService) List(ctx context.Context) ([]core.Subscription, error) {
	return s.store.ListSubscriptions(ctx)
}

func (s *SubscriptionService) Get(ctx context.Context, id string) (core.Subscription, error) {
	return s.store.GetSubscription(ctx, id)
}

// Create validates and stores a new subscription. Raising the pause flag on
// creation stamps the request time unless the record already carries an
// earlier one (imports keep theirs).
func (s *SubscriptionService) Create(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if sub.Status == core.Paused {
		sub.PauseAtRenewal = false
	}
	switch now := s.now(); {
	case !sub.PauseAtRenewal:
		sub.PauseScheduledAt = time.Time{}
	case sub.PauseScheduledAt.IsZero() || sub.PauseScheduledAt.After(now):
		sub.PauseScheduledAt = now
	}

	created, err := s.store.CreateSubscription(ctx, sub)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("save subscription: %w", err)
	}

	s.publish(ctx, core.EventCreated, created)
	return created, nil
}

// Update replaces a stored subscription. The pause request time is kept
// while the flag stays raised, stamped when it is raised and cleared when
// it is dropped or the subscription is paused.
func (s *SubscriptionService) Update(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	existing, err := s.store.GetSubscription(ctx, sub.ID)
	if err != nil {
		return core.Subscription{}, err
	}

	sub.CreatedAt = existing.CreatedAt
	switch {
	case sub.Status == core.Paused || !sub.PauseAtRenewal:
		sub.PauseAtRenewal = false
		sub.PauseScheduledAt = time.Time{}
	case existing.PauseAtRenewal && !existing.PauseScheduledAt.IsZero():
		sub.PauseScheduledAt = existing.PauseScheduledAt
	default:
		sub.PauseScheduledAt = s.now()
	}

	updated, err := s.store.UpdateSubscription(ctx, sub)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("update subscription: %w", err)
	}

	s.publish(ctx, core.EventUpdated, updated)
	return updated, nil
}

func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	existing, err := s.store.GetSubscription(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSubscription(ctx, id); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}

	s.publish(ctx, core.EventDeleted, existing)
	return nil
}

// Pause applies the explicit active -> paused transition.
func (s *SubscriptionService) Pause(ctx context.Context, id string) (core.Subscription, error) {
	return s.transition(ctx, id, core.EventPaused, func(sub core.Subscription) (core.Subscription, error) {
		return Pause(sub)
	})
}

// Resume applies the explicit paused -> active transition.
func (s *SubscriptionService) Resume(ctx context.Context, id string) (core.Subscription, error) {
	return s.transition(ctx, id, core.EventResumed, func(sub core.Subscription) (core.Subscription, error) {
		return Resume(sub)
	})
}

// SchedulePause raises or clears the pause-at-renewal flag.
func (s *SubscriptionService) SchedulePause(ctx context.Context, id string, enabled bool) (core.Subscription, error) {
	return s.transition(ctx, id, core.EventPauseScheduled, func(sub core.Subscription) (core.Subscription, error) {
		return SchedulePause(sub, enabled, s.now())
	})
}

func (s *SubscriptionService) transition(ctx context.Context, id string, event core.EventType, apply func(core.Subscription) (core.Subscription, error)) (core.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, id)
	if err != nil {
		return core.Subscription{}, err
	}
	next, err := apply(sub)
	if err != nil {
		return core.Subscription{}, err
	}
	updated, err := s.store.UpdateSubscription(ctx, next)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("%s subscription: %w", event, err)
	}

	s.publish(ctx, event, updated)
	return updated, nil
}

func (s *SubscriptionService) Settings(ctx context.Context) (core.Settings, error) {
	return s.store.GetSettings(ctx)
}

func (s *SubscriptionService) SaveSettings(ctx context.Context, settings core.Settings) (core.Settings, error) {
	if err := settings.Validate(); err != nil {
		return core.Settings{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	settings.Currency = settings.CurrencyOrDefault()
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return core.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}

// Snapshot loads the subscriptions and settings the engine works on.
func (s *SubscriptionService) Snapshot(ctx context.Context) ([]core.Subscription, core.Settings, error) {
	subs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return nil, core.Settings{}, fmt.Errorf("load subscriptions: %w", err)
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, core.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return subs, settings, nil
}

// Dashboard recomputes the overview from a fresh snapshot on every call.
func (s *SubscriptionService) Dashboard(ctx context.Context, now time.Time, upcomingLimit int) (core.Overview, error) {
	subs, settings, err := s.Snapshot(ctx)
	if err != nil {
		return core.Overview{}, err
	}
	overview := BuildOverview(subs, settings, now, upcomingLimit)
	s.metrics.ObserveSnapshot(subs, overview.Totals)
	return overview, nil
}

// Calendar returns the billing dates of the snapshot in year/month.
func (s *SubscriptionService) Calendar(ctx context.Context, year int, month time.Month, now time.Time) (core.MonthCalendar, error) {
	subs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return core.MonthCalendar{}, fmt.Errorf("load subscriptions: %w", err)
	}
	return Calendar(subs, year, month, now), nil
}

func (s *SubscriptionService) publish(ctx context.Context, t core.EventType, sub core.Subscription) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not available, skipping event",
			log.FieldEventType, t,
			log.FieldSubscriptionID, sub.ID)
		return
	}
	if err := s.publisher.Publish(ctx, core.NewEvent(t, sub, s.now())); err != nil {
		slog.ErrorContext(ctx, "Failed to publish subscription event",
			log.FieldEventType, t,
			log.FieldSubscriptionID, sub.ID,
			log.FieldError, err)
	}
}
