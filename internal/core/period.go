// Package core provides the subscription domain types and calendar arithmetic.
//
// This file contains the period increments used by the recurrence projector.
// Month and year increments never overflow into the following month: a day
// that does not exist in the target month is clamped to its last day.

package core

import (
	"strings"
	"time"
)

const (
	Weekly  Period = "Weekly"
	Monthly Period = "Monthly"
	Yearly  Period = "Yearly"
)

// Period is the billing cycle of a subscription.
type Period string

// ParsePeriod maps a stored period to a Period. Unknown or empty values fall
// back to Monthly.
func ParsePeriod(s string) Period {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly":
		return Weekly
	case "yearly":
		return Yearly
	default:
		return Monthly
	}
}

// Known reports whether p is one of the three supported periods.
func (p Period) Known() bool {
	return p == Weekly || p == Monthly || p == Yearly
}

// OrMonthly returns p when known, Monthly otherwise.
func (p Period) OrMonthly() Period {
	if p.Known() {
		return p
	}
	return Monthly
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay returns day limited to the last valid day of year/month.
func ClampDay(year int, month time.Month, day int) int {
	if last := DaysIn(year, month); day > last {
		return last
	}
	if day < 1 {
		return 1
	}
	return day
}

// AddWeek advances t by 7 days.
func AddWeek(t time.Time) time.Time {
	return t.AddDate(0, 0, 7)
}

// AddWeeks advances t by n weeks.
func AddWeeks(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, 7*n)
}

// AddMonth advances t by one calendar month, clamping the day.
func AddMonth(t time.Time) time.Time {
	return AddMonths(t, 1)
}

// AddMonths advances t by n calendar months from the same anchor day,
// clamping to the last day of the target month (Jan 31 + 1 -> Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	// Normalize the target month without letting the day roll over.
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	ty, tm, _ := target.Date()
	hh, mm, ss := t.Clock()
	return time.Date(ty, tm, ClampDay(ty, tm, d), hh, mm, ss, t.Nanosecond(), t.Location())
}

// AddYear advances t by one year; Feb 29 becomes Feb 28 in non-leap years.
func AddYear(t time.Time) time.Time {
	return AddYears(t, 1)
}

// AddYears advances t by n years with the same clamping as AddMonths.
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

// Advance moves t forward by one period. Unknown periods use Monthly.
func Advance(t time.Time, p Period) time.Time {
	switch p {
	case Weekly:
		return AddWeek(t)
	case Yearly:
		return AddYear(t)
	default:
		return AddMonth(t)
	}
}
