package amqp

import (
	"encoding/json"
	"time"

	"subtrack/internal/core"
)

// SubscriptionEventMessage is the JSON body published for every lifecycle
// change. Consumers fetch the full record by id when they need more.
type SubscriptionEventMessage struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSubscriptionEventMessage converts a domain event to its wire form.
func NewSubscriptionEventMessage(e core.Event) *SubscriptionEventMessage {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return &SubscriptionEventMessage{
		Type:      string(e.Type),
		ID:        e.SubscriptionID,
		Name:      e.Name,
		Status:    string(e.Status),
		Timestamp: ts.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SubscriptionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Event converts the message back to a domain event.
func (m *SubscriptionEventMessage) Event() core.Event {
	return core.Event{
		Type:           core.EventType(m.Type),
		SubscriptionID: m.ID,
		Name:           m.Name,
		Status:         core.ParseStatus(m.Status),
		Timestamp:      m.Timestamp,
	}
}

// SubscriptionEventMessageFromJSON creates a message from JSON bytes
func SubscriptionEventMessageFromJSON(data []byte) (*SubscriptionEventMessage, error) {
	var msg SubscriptionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
