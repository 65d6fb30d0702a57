// Package memory is a mutex-guarded Store kept entirely in process memory.
// It backs tests and the "memory" data backend.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"subtrack/internal/core"
	"subtrack/internal/ports"
	"subtrack/internal/seed"
)

type Store struct {
	mu       sync.RWMutex
	subs     []core.Subscription // creation order
	settings core.Settings
	now      func() time.Time
}

var _ ports.Store = (*Store)(nil)

// New returns an empty store with default settings.
func New() *Store {
	return &Store{settings: core.DefaultSettings(), now: time.Now}
}

// NewFromSeed returns a store holding the contents of a seed document.
func NewFromSeed(doc *seed.Document) *Store {
	s := New()
	if doc == nil {
		return s
	}
	if doc.Settings != nil {
		s.settings = doc.Settings.ToCore()
	}
	for _, sub := range doc.Snapshot(s.now()) {
		s.subs = append(s.subs, s.prepare(sub))
	}
	return s
}

// Open loads the seed file at path. An empty path gives an empty store.
func Open(path string) (*Store, error) {
	if path == "" {
		return New(), nil
	}
	doc, err := seed.Load(path)
	if err != nil {
		return nil, err
	}
	return NewFromSeed(doc), nil
}

func (s *Store) prepare(sub core.Subscription) core.Subscription {
	if strings.TrimSpace(sub.ID) == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = s.now()
	}
	if !sub.Status.Valid() {
		sub.Status = core.Active
	}
	sub.Period = sub.Period.OrMonthly()
	sub.Category = sub.CategoryOrDefault()
	return sub
}

func (s *Store) indexOf(id string) int {
	for i, sub := range s.subs {
		if sub.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) ListSubscriptions(_ context.Context) ([]core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Subscription, len(s.subs))
	copy(out, s.subs)
	return out, nil
}

func (s *Store) GetSubscription(_ context.Context, id string) (core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.subs[i], nil
	}
	return core.Subscription{}, fmt.Errorf("get subscription %s: %w", id, ports.ErrNotFound)
}

func (s *Store) CreateSubscription(_ context.Context, sub core.Subscription) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub = s.prepare(sub)
	if s.indexOf(sub.ID) >= 0 {
		return core.Subscription{}, fmt.Errorf("create subscription: id %s already exists", sub.ID)
	}
	s.subs = append(s.subs, sub)
	return sub, nil
}

func (s *Store) UpdateSubscription(_ context.Context, sub core.Subscription) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(sub.ID)
	if i < 0 {
		return core.Subscription{}, fmt.Errorf("update subscription %s: %w", sub.ID, ports.ErrNotFound)
	}
	sub.CreatedAt = s.subs[i].CreatedAt
	sub = s.prepare(sub)
	s.subs[i] = sub
	return sub, nil
}

func (s *Store) DeleteSubscription(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete subscription %s: %w", id, ports.ErrNotFound)
	}
	s.subs = append(s.subs[:i], s.subs[i+1:]...)
	return nil
}

// ApplyScheduledPause mirrors the conditional update of the SQL backend.
func (s *Store) ApplyScheduledPause(_ context.Context, id string, scheduledAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	sub := &s.subs[i]
	if sub.Status != core.Active || !sub.PauseAtRenewal || !sub.PauseScheduledAt.Equal(scheduledAt) {
		return false, nil
	}
	sub.Status = core.Paused
	sub.PauseAtRenewal = false
	sub.PauseScheduledAt = time.Time{}
	return true, nil
}

func (s *Store) GetSettings(_ context.Context) (core.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, settings core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings.Currency = settings.CurrencyOrDefault()
	s.settings = settings
	return nil
}

func (s *Store) Close() error { return nil }
