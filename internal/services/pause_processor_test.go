package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"subtrack/internal/core"
	"subtrack/internal/metrics"
	"subtrack/internal/store/memory"
)

func seedStore(t *testing.T, subs ...core.Subscription) *memory.Store {
	t.Helper()
	store := memory.New()
	for _, s := range subs {
		if _, err := store.CreateSubscription(context.Background(), s); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestPauseProcessor_ProcessDuePauses(t *testing.T) {
	scheduled := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store := seedStore(t,
		core.Subscription{ID: "due", Name: "Gym", Price: 30, Period: core.Monthly, StartDate: core.NewDate(2024, 1, 15), Status: core.Active, PauseAtRenewal: true, PauseScheduledAt: scheduled},
		core.Subscription{ID: "later", Name: "Cloud", Price: 5, Period: core.Monthly, StartDate: core.NewDate(2024, 1, 25), Status: core.Active, PauseAtRenewal: true, PauseScheduledAt: scheduled},
		core.Subscription{ID: "plain", Name: "Music", Price: 10, Period: core.Monthly, StartDate: core.NewDate(2024, 1, 10), Status: core.Active},
	)
	pub := &recordingPublisher{}
	registry := prometheus.NewRegistry()
	m := metrics.MustNewMetrics(registry)
	p := NewPauseProcessor(store, pub, m)
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	count, err := p.ProcessDuePauses(ctx, now)
	if err != nil {
		t.Fatalf("ProcessDuePauses() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("ProcessDuePauses() = %d, want 1", count)
	}

	due, _ := store.GetSubscription(ctx, "due")
	if due.Status != core.Paused || due.PauseAtRenewal {
		t.Errorf("due subscription = %+v", due)
	}
	later, _ := store.GetSubscription(ctx, "later")
	if later.Status != core.Active || !later.PauseAtRenewal {
		t.Errorf("not-yet-due subscription = %+v", later)
	}

	// Running again at the same instant is a no-op.
	count, err = p.ProcessDuePauses(ctx, now)
	if err != nil || count != 0 {
		t.Errorf("second ProcessDuePauses() = %d, %v; want 0, nil", count, err)
	}

	types := pub.types()
	if len(types) != 1 || types[0] != core.EventScheduledPauseApplied {
		t.Errorf("events = %v", types)
	}

	if got := counterValue(t, registry, "subtrack_scheduled_pauses_applied_total"); got != 1 {
		t.Errorf("scheduled pauses counter = %v, want 1", got)
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

type failingStore struct {
	*memory.Store
	listErr  error
	applyErr error
}

func (f failingStore) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Store.ListSubscriptions(ctx)
}

func (f failingStore) ApplyScheduledPause(ctx context.Context, id string, scheduledAt time.Time) (bool, error) {
	if f.applyErr != nil {
		return false, f.applyErr
	}
	return f.Store.ApplyScheduledPause(ctx, id, scheduledAt)
}

func TestPauseProcessor_Failures(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("list failure is returned", func(t *testing.T) {
		p := NewPauseProcessor(failingStore{Store: memory.New(), listErr: errors.New("disk gone")}, nil, nil)
		if _, err := p.ProcessDuePauses(ctx, now); err == nil {
			t.Error("ProcessDuePauses() expected error")
		}
	})

	t.Run("apply failure skips the record", func(t *testing.T) {
		store := seedStore(t, core.Subscription{ID: "x", Name: "x", Period: core.Monthly, StartDate: core.NewDate(2024, 1, 15), Status: core.Active, PauseAtRenewal: true})
		p := NewPauseProcessor(failingStore{Store: store, applyErr: errors.New("locked")}, nil, nil)
		count, err := p.ProcessDuePauses(ctx, now)
		if err != nil || count != 0 {
			t.Errorf("ProcessDuePauses() = %d, %v; want 0, nil", count, err)
		}
	})

	t.Run("uninitialized processor", func(t *testing.T) {
		if _, err := (&PauseProcessor{}).ProcessDuePauses(ctx, now); err == nil {
			t.Error("expected error for nil store")
		}
	})
}

func TestPauseProcessor_RunStopsOnCancel(t *testing.T) {
	store := seedStore(t, core.Subscription{ID: "x", Name: "x", Period: core.Weekly, StartDate: core.NewDate(2024, 3, 8), Status: core.Active, PauseAtRenewal: true})
	p := NewPauseProcessor(store, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx, time.Hour, fixedClock(time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)))
	}()

	// The first pass runs before the first tick.
	deadline := time.After(2 * time.Second)
	for {
		sub, _ := store.GetSubscription(context.Background(), "x")
		if sub.Status == core.Paused {
			break
		}
		select {
		case <-deadline:
			t.Fatal("initial pass did not pause the subscription")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
}

// reschedulingStore re-raises every pending pause right after handing out
// the list, as a resume followed by a new request would.
type reschedulingStore struct {
	*memory.Store
	at time.Time
}

func (r reschedulingStore) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	subs, err := r.Store.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		if s.PauseAtRenewal {
			s.PauseScheduledAt = r.at
			if _, err := r.Store.UpdateSubscription(ctx, s); err != nil {
				return nil, err
			}
		}
	}
	return subs, nil
}

func TestPauseProcessor_SkipsRequestRaisedAfterListing(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	store := seedStore(t, core.Subscription{
		ID: "gym", Name: "Gym", Price: 30, Period: core.Monthly,
		StartDate: core.NewDate(2024, 1, 15), Status: core.Active,
		PauseAtRenewal: true, PauseScheduledAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	pub := &recordingPublisher{}
	p := NewPauseProcessor(reschedulingStore{Store: store, at: now}, pub, nil)

	count, err := p.ProcessDuePauses(context.Background(), now)
	if err != nil || count != 0 {
		t.Fatalf("ProcessDuePauses() = %d, %v; want 0, nil", count, err)
	}
	got, _ := store.GetSubscription(context.Background(), "gym")
	if got.Status != core.Active || !got.PauseAtRenewal || !got.PauseScheduledAt.Equal(now) {
		t.Errorf("rescheduled subscription = %+v, want active with the new request pending", got)
	}
	if got := pub.types(); len(got) != 0 {
		t.Errorf("published %v, want nothing", got)
	}
}
