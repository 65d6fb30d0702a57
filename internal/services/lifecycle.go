package services

import (
	"time"

	"subtrack/internal/core"
)

// IsPauseDue reports whether a scheduled pause must be applied now: the
// subscription is active, PauseAtRenewal is set, and a billing date has
// arrived since the pause was requested.
//
// When the request time is unknown (records that only carry the flag) the
// pause is due on the billing date itself.
func IsPauseDue(sub core.Subscription, now time.Time) bool {
	if sub.Status != core.Active || !sub.PauseAtRenewal {
		return false
	}
	prev, ok := PreviousOccurrence(sub, now)
	if !ok {
		return false
	}
	if sub.PauseScheduledAt.IsZero() {
		return prev.Equal(core.DateOf(now).Time)
	}
	return prev.After(core.DateOf(sub.PauseScheduledAt).Time)
}

// ApplyScheduledPause returns the paused copy of sub with the flag cleared
// when the pause is due, or sub unchanged and false otherwise. Clearing the
// flag in the same transition makes a second call a no-op.
func ApplyScheduledPause(sub core.Subscription, now time.Time) (core.Subscription, bool) {
	if !IsPauseDue(sub, now) {
		return sub, false
	}
	sub.Status = core.Paused
	sub.PauseAtRenewal = false
	sub.PauseScheduledAt = time.Time{}
	return sub, true
}

// Pause is the explicit, immediate active -> paused transition.
func Pause(sub core.Subscription) (core.Subscription, error) {
	if sub.Status == core.Paused {
		return sub, core.ErrAlreadyPaused
	}
	sub.Status = core.Paused
	sub.PauseAtRenewal = false
	sub.PauseScheduledAt = time.Time{}
	return sub, nil
}

// Resume is the explicit paused -> active transition. It cancels any
// pending scheduled pause.
func Resume(sub core.Subscription) (core.Subscription, error) {
	if sub.Status != core.Paused {
		return sub, core.ErrNotPaused
	}
	sub.Status = core.Active
	sub.PauseAtRenewal = false
	sub.PauseScheduledAt = time.Time{}
	return sub, nil
}

// SchedulePause raises or clears the pause-at-renewal intent on an active
// subscription. Raising stamps the request time used by IsPauseDue.
func SchedulePause(sub core.Subscription, enabled bool, now time.Time) (core.Subscription, error) {
	if sub.Status != core.Active {
		return sub, core.ErrNotActive
	}
	if !enabled {
		sub.PauseAtRenewal = false
		sub.PauseScheduledAt = time.Time{}
		return sub, nil
	}
	if !sub.PauseAtRenewal {
		sub.PauseAtRenewal = true
		sub.PauseScheduledAt = now
	}
	return sub, nil
}
