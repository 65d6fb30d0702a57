package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"subtrack/internal/core"
	"subtrack/internal/ports"
)

func TestStore_CRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateSubscription(ctx, core.Subscription{Name: "Netflix", Price: 13.49, Period: core.Period("bogus")})
	if err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
	if created.ID == "" || created.Category != core.DefaultCategory || created.Status != core.Active || created.Period != core.Monthly {
		t.Errorf("CreateSubscription() = %+v", created)
	}

	if _, err := s.CreateSubscription(ctx, core.Subscription{ID: created.ID, Name: "dup"}); err == nil {
		t.Error("duplicate id should fail")
	}

	created.Price = 15.49
	updated, err := s.UpdateSubscription(ctx, created)
	if err != nil {
		t.Fatalf("UpdateSubscription() error = %v", err)
	}
	if updated.Price != 15.49 || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("UpdateSubscription() = %+v", updated)
	}

	if err := s.DeleteSubscription(ctx, created.ID); err != nil {
		t.Fatalf("DeleteSubscription() error = %v", err)
	}
	if _, err := s.GetSubscription(ctx, created.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("GetSubscription(deleted) error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteSubscription(ctx, created.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("DeleteSubscription(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, name := range []string{"b", "a", "c"} {
		if _, err := s.CreateSubscription(ctx, core.Subscription{Name: name}); err != nil {
			t.Fatal(err)
		}
	}

	subs, _ := s.ListSubscriptions(ctx)
	if subs[0].Name != "b" || subs[1].Name != "a" || subs[2].Name != "c" {
		t.Errorf("ListSubscriptions() order = %v %v %v", subs[0].Name, subs[1].Name, subs[2].Name)
	}
	subs[0].Name = "changed"
	again, _ := s.ListSubscriptions(ctx)
	if again[0].Name != "b" {
		t.Error("ListSubscriptions() exposed internal state")
	}
}

func TestStore_ApplyScheduledPause(t *testing.T) {
	s := New()
	ctx := context.Background()
	sub, _ := s.CreateSubscription(ctx, core.Subscription{Name: "gym", PauseAtRenewal: true})

	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.ApplyScheduledPause(ctx, sub.ID, sub.PauseScheduledAt)
			if err != nil {
				t.Error(err)
				return
			}
			if ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if applied != 1 {
		t.Errorf("scheduled pause applied %d times, want 1", applied)
	}
	got, _ := s.GetSubscription(ctx, sub.ID)
	if got.Status != core.Paused || got.PauseAtRenewal {
		t.Errorf("after pause = %+v", got)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	data := "settings:\n  budget: 20\nsubscriptions:\n  - id: x\n    name: X\n    price: 3\n    period: Weekly\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	settings, _ := s.GetSettings(context.Background())
	if settings.Budget != 20 {
		t.Errorf("Budget = %v, want 20", settings.Budget)
	}
	sub, err := s.GetSubscription(context.Background(), "x")
	if err != nil || sub.Period != core.Weekly {
		t.Errorf("GetSubscription() = %+v, %v", sub, err)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Open(missing) should fail")
	}
}

func TestStore_ApplyScheduledPauseMatchesRequestTime(t *testing.T) {
	s := New()
	ctx := context.Background()
	listed := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	sub, _ := s.CreateSubscription(ctx, core.Subscription{Name: "gym", PauseAtRenewal: true, PauseScheduledAt: listed})

	sub.PauseScheduledAt = listed.AddDate(0, 0, 14)
	if _, err := s.UpdateSubscription(ctx, sub); err != nil {
		t.Fatalf("UpdateSubscription() error = %v", err)
	}

	tests := []struct {
		name  string
		stamp time.Time
		want  bool
	}{
		{"stale request", listed, false},
		{"zero request", time.Time{}, false},
		{"current request", sub.PauseScheduledAt, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := s.ApplyScheduledPause(ctx, sub.ID, tt.stamp)
			if err != nil {
				t.Fatalf("ApplyScheduledPause() error = %v", err)
			}
			if ok != tt.want {
				t.Errorf("ApplyScheduledPause() = %v, want %v", ok, tt.want)
			}
		})
	}
}
