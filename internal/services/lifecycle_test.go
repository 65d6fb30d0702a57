package services

import (
	"errors"
	"testing"
	"time"

	"subtrack/internal/core"
)

func TestIsPauseDue(t *testing.T) {
	start := core.NewDate(2024, 1, 15)
	scheduled := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		sub  core.Subscription
		now  time.Time
		want bool
	}{
		{
			name: "flag not set",
			sub:  core.Subscription{Period: core.Monthly, StartDate: start, Status: core.Active},
			now:  time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "already paused",
			sub:  core.Subscription{Period: core.Monthly, StartDate: start, Status: core.Paused, PauseAtRenewal: true, PauseScheduledAt: scheduled},
			now:  time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "billing date not reached yet",
			sub:  core.Subscription{Period: core.Monthly, StartDate: start, Status: core.Active, PauseAtRenewal: true, PauseScheduledAt: scheduled},
			now:  time.Date(2024, 3, 14, 23, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "billing date reached",
			sub:  core.Subscription{Period: core.Monthly, StartDate: start, Status: core.Active, PauseAtRenewal: true, PauseScheduledAt: scheduled},
			now:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "billing date passed while nobody checked",
			sub:  core.Subscription{Period: core.Monthly, StartDate: start, Status: core.Active, PauseAtRenewal: true, PauseScheduledAt: scheduled},
			now:  time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "requested on the billing date itself waits for the next one",
			sub:  core.Subscription{Period: core.Monthly, StartDate: start, Status: core.Active, PauseAtRenewal: true, PauseScheduledAt: time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)},
			now:  time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "unknown request time is due on the billing date",
			sub:  core.Subscription{Period: core.Weekly, StartDate: core.NewDate(2024, 3, 1), Status: core.Active, PauseAtRenewal: true},
			now:  time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "unknown request time is not due between billing dates",
			sub:  core.Subscription{Period: core.Weekly, StartDate: core.NewDate(2024, 3, 1), Status: core.Active, PauseAtRenewal: true},
			now:  time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "not started yet",
			sub:  core.Subscription{Period: core.Yearly, StartDate: core.NewDate(2025, 1, 1), Status: core.Active, PauseAtRenewal: true},
			now:  time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPauseDue(tt.sub, tt.now); got != tt.want {
				t.Errorf("IsPauseDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyScheduledPause(t *testing.T) {
	s := core.Subscription{
		ID:               "s1",
		Period:           core.Monthly,
		StartDate:        core.NewDate(2024, 1, 15),
		Status:           core.Active,
		PauseAtRenewal:   true,
		PauseScheduledAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)

	paused, applied := ApplyScheduledPause(s, now)
	if !applied {
		t.Fatal("expected the scheduled pause to apply")
	}
	if paused.Status != core.Paused || paused.PauseAtRenewal || !paused.PauseScheduledAt.IsZero() {
		t.Errorf("ApplyScheduledPause() = %+v, want paused with flag cleared", paused)
	}
	if s.Status != core.Active || !s.PauseAtRenewal {
		t.Error("input subscription was modified")
	}

	again, applied := ApplyScheduledPause(paused, now)
	if applied {
		t.Error("second application must be a no-op")
	}
	if again != paused {
		t.Errorf("second application changed the record: %+v", again)
	}
}

func TestPauseResume(t *testing.T) {
	active := core.Subscription{ID: "s1", Status: core.Active, PauseAtRenewal: true, PauseScheduledAt: time.Now()}

	paused, err := Pause(active)
	if err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if paused.Status != core.Paused || paused.PauseAtRenewal {
		t.Errorf("Pause() = %+v", paused)
	}
	if _, err := Pause(paused); !errors.Is(err, core.ErrAlreadyPaused) {
		t.Errorf("Pause(paused) error = %v, want ErrAlreadyPaused", err)
	}

	resumed, err := Resume(paused)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if resumed.Status != core.Active || resumed.PauseAtRenewal {
		t.Errorf("Resume() = %+v", resumed)
	}
	if _, err := Resume(resumed); !errors.Is(err, core.ErrNotPaused) {
		t.Errorf("Resume(active) error = %v, want ErrNotPaused", err)
	}
}

func TestSchedulePause(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	active := core.Subscription{ID: "s1", Status: core.Active}

	scheduled, err := SchedulePause(active, true, now)
	if err != nil {
		t.Fatalf("SchedulePause() error = %v", err)
	}
	if !scheduled.PauseAtRenewal || !scheduled.PauseScheduledAt.Equal(now) {
		t.Errorf("SchedulePause(true) = %+v", scheduled)
	}

	later := now.Add(48 * time.Hour)
	again, _ := SchedulePause(scheduled, true, later)
	if !again.PauseScheduledAt.Equal(now) {
		t.Errorf("re-scheduling moved the request time to %v", again.PauseScheduledAt)
	}

	cleared, err := SchedulePause(scheduled, false, later)
	if err != nil {
		t.Fatalf("SchedulePause(false) error = %v", err)
	}
	if cleared.PauseAtRenewal || !cleared.PauseScheduledAt.IsZero() {
		t.Errorf("SchedulePause(false) = %+v", cleared)
	}

	if _, err := SchedulePause(core.Subscription{Status: core.Paused}, true, now); !errors.Is(err, core.ErrNotActive) {
		t.Errorf("SchedulePause(paused) error = %v, want ErrNotActive", err)
	}
}
