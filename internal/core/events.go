package core

import "time"

// EventType names a subscription lifecycle change.
type EventType string

const (
	EventCreated               EventType = "created"
	EventUpdated               EventType = "updated"
	EventDeleted               EventType = "deleted"
	EventPaused                EventType = "paused"
	EventResumed               EventType = "resumed"
	EventPauseScheduled        EventType = "pause_scheduled"
	EventScheduledPauseApplied EventType = "scheduled_pause_applied"
)

// Event is emitted after a subscription change has been persisted.
type Event struct {
	Type           EventType
	SubscriptionID string
	Name           string
	Status         Status
	Timestamp      time.Time
}

// NewEvent builds an event describing sub as it is after the change.
func NewEvent(t EventType, sub Subscription, at time.Time) Event {
	return Event{
		Type:           t,
		SubscriptionID: sub.ID,
		Name:           sub.Name,
		Status:         sub.Status,
		Timestamp:      at,
	}
}
