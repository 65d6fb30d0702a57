package storage

import "database/sql"

// Subscription is a row of the subscriptions table.
type Subscription struct {
	ID               string
	Name             string
	Price            float64
	Period           string
	Url              string
	Icon             string
	StartDate        string
	Description      string
	Status           string
	Category         string
	PauseAtRenewal   int64
	CreatedAt        string
	PauseScheduledAt sql.NullString
}

// Setting is a row of the settings table.
type Setting struct {
	Key   string
	Value string
}
