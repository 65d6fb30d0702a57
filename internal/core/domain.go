package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Active Status = "active"
	Paused Status = "paused"
)

// DefaultCategory is used for grouping when a subscription has no category.
const DefaultCategory = "Other"

// DefaultCurrency is the display currency when settings carry none.
const DefaultCurrency = "EUR"

type (
	Status string

	Date struct {
		time.Time
	}

	Subscription struct {
		ID        string
		Name      string
		Price     float64
		Period    Period
		StartDate Date // zero when missing or unparseable
		Status    Status

		// PauseAtRenewal asks for an automatic active -> paused transition
		// the next time the billing date passes.
		PauseAtRenewal   bool
		PauseScheduledAt time.Time // when PauseAtRenewal was raised, zero if unknown

		Category    string
		Description string
		URL         string
		Icon        string
		CreatedAt   time.Time
	}

	Settings struct {
		Budget   float64 // 0 means no budget set
		Currency string  // display only
	}
)

var (
	ErrEmptyName      = errors.New("empty name")
	ErrNameTooLong    = errors.New("name too long (max 200 characters)")
	ErrInvalidPrice   = errors.New("invalid price")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrInvalidBudget  = errors.New("invalid budget")
	ErrAlreadyPaused  = errors.New("subscription already paused")
	ErrNotPaused      = errors.New("subscription is not paused")
	ErrNotActive      = errors.New("subscription is not active")
	ErrInvalidDateStr = errors.New("invalid date")
)

// ParseStatus maps a stored status to a Status. Anything that is not
// "paused" is active: a record has exactly one of the two states.
func ParseStatus(s string) Status {
	if strings.EqualFold(strings.TrimSpace(s), string(Paused)) {
		return Paused
	}
	return Active
}

func (s Status) Valid() bool {
	return s == Active || s == Paused
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date in the instant's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD or RFC 3339.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDateStr
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, ErrInvalidDateStr
}

// IsEmpty returns true if the date is zero (missing or unparseable start dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// OrNow returns d, or the calendar date of now when d is empty.
func (d Date) OrNow(now time.Time) Date {
	if d.IsEmpty() {
		return DateOf(now)
	}
	return DateOf(d.Time)
}

// String formats the date as YYYY-MM-DD; empty dates format as "".
func (d Date) String() string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format("2006-01-02")
}

// CategoryOrDefault returns the grouping key used by aggregations.
func (s Subscription) CategoryOrDefault() string {
	if c := strings.TrimSpace(s.Category); c != "" {
		return c
	}
	return DefaultCategory
}

func (s Subscription) IsPaused() bool {
	return s.Status == Paused
}

// Validate enforces the caller contract for records handed to the engine.
func (s Subscription) Validate() error {
	if len(strings.TrimSpace(s.Name)) == 0 {
		return ErrEmptyName
	}
	if len(s.Name) > 200 {
		return ErrNameTooLong
	}
	if s.Price < 0 || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
		return ErrInvalidPrice
	}
	if !s.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{Budget: 0, Currency: DefaultCurrency}
}

func (s Settings) Validate() error {
	if s.Budget < 0 || math.IsNaN(s.Budget) || math.IsInf(s.Budget, 0) {
		return ErrInvalidBudget
	}
	return nil
}

// CurrencyOrDefault returns the display currency code.
func (s Settings) CurrencyOrDefault() string {
	if c := strings.TrimSpace(s.Currency); c != "" {
		return strings.ToUpper(c)
	}
	return DefaultCurrency
}
