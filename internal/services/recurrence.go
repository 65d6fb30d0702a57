// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for recurrence projection.
// Each period (weekly, monthly, yearly) has its own projector that knows how
// to advance one billing period and where the subscription lands on a month
// calendar. Every caller that needs a due date goes through this file.

package services

import (
	"time"

	"subtrack/internal/core"
)

// Projector is the strategy interface for one billing period.
type Projector interface {
	// Next applies one billing period to t, clamping the day when the
	// target month is shorter.
	Next(t time.Time) time.Time

	// InMonth returns the calendar tile for the given month, if any.
	InMonth(start core.Date, year int, month time.Month) (core.Date, bool)
}

// WeeklyProjector implements Projector for weekly subscriptions.
type WeeklyProjector struct{}

func (WeeklyProjector) Next(t time.Time) time.Time {
	return core.AddWeek(t)
}

// InMonth only shows the literal start date. Weekly repetition is not
// projected onto the calendar.
func (WeeklyProjector) InMonth(start core.Date, year int, month time.Month) (core.Date, bool) {
	if start.Year() == year && start.Month() == month {
		return start, true
	}
	return core.Date{}, false
}

// MonthlyProjector implements Projector for monthly subscriptions.
type MonthlyProjector struct{}

func (MonthlyProjector) Next(t time.Time) time.Time {
	return core.AddMonth(t)
}

// InMonth always bills on the anchor day, clamped to the month length.
func (MonthlyProjector) InMonth(start core.Date, year int, month time.Month) (core.Date, bool) {
	return core.NewDate(year, int(month), core.ClampDay(year, month, start.Day())), true
}

// YearlyProjector implements Projector for yearly subscriptions.
type YearlyProjector struct{}

func (YearlyProjector) Next(t time.Time) time.Time {
	return core.AddYear(t)
}

// InMonth bills only in the anchor month.
func (YearlyProjector) InMonth(start core.Date, year int, month time.Month) (core.Date, bool) {
	if start.Month() != month {
		return core.Date{}, false
	}
	return core.NewDate(year, int(month), core.ClampDay(year, month, start.Day())), true
}

// projectors maps periods to their strategies.
var projectors = map[core.Period]Projector{
	core.Weekly:  WeeklyProjector{},
	core.Monthly: MonthlyProjector{},
	core.Yearly:  YearlyProjector{},
}

// GetProjector returns the projector for a period. Unknown periods get the
// monthly projector.
func GetProjector(p core.Period) Projector {
	if proj, ok := projectors[p]; ok {
		return proj
	}
	return projectors[core.Monthly]
}

// NextOccurrence returns the first billing date strictly after the calendar
// date of now, or the start date when the subscription has not started yet.
// A missing start date is treated as starting today.
//
// Dates are stepped one period at a time from the start, so a clamped day
// carries forward: Jan 31 monthly bills Feb 29 and then Mar 29.
func NextOccurrence(sub core.Subscription, now time.Time) core.Date {
	today := core.DateOf(now)
	start := sub.StartDate.OrNow(now)
	if start.After(today.Time) {
		return start
	}
	proj := GetProjector(sub.Period)
	t := fastForward(sub.Period, start, today)
	for !t.After(today.Time) {
		t = proj.Next(t)
	}
	return core.Date{Time: t}
}

// PreviousOccurrence returns the latest billing date on or before the
// calendar date of now. ok is false when the subscription has not started.
func PreviousOccurrence(sub core.Subscription, now time.Time) (core.Date, bool) {
	today := core.DateOf(now)
	start := sub.StartDate.OrNow(now)
	if start.After(today.Time) {
		return core.Date{}, false
	}
	proj := GetProjector(sub.Period)
	t := fastForward(sub.Period, start, today)
	for next := proj.Next(t); !next.After(today.Time); next = proj.Next(t) {
		t = next
	}
	return core.Date{Time: t}, true
}

// fastForward returns an occurrence on or before today. Weeks never clamp,
// so weekly schedules jump straight there; months and years are stepped
// from the start because clamping depends on every month passed.
func fastForward(p core.Period, start, today core.Date) time.Time {
	if p.OrMonthly() != core.Weekly {
		return start.Time
	}
	weeks := int(today.Sub(start.Time).Hours()/24) / 7
	return core.AddWeeks(start.Time, max(weeks-1, 0))
}

// OccurrencesInMonth returns the billing dates of sub inside year/month.
// Paused subscriptions and subscriptions starting after the month never
// appear.
func OccurrencesInMonth(sub core.Subscription, year int, month time.Month, now time.Time) []core.Date {
	if sub.IsPaused() {
		return nil
	}
	start := sub.StartDate.OrNow(now)
	lastOfMonth := core.NewDate(year, int(month), core.DaysIn(year, month))
	if start.After(lastOfMonth.Time) {
		return nil
	}
	d, ok := GetProjector(sub.Period).InMonth(start, year, month)
	if !ok || d.Before(start.Time) {
		return nil
	}
	return []core.Date{d}
}

// Calendar groups the snapshot by billing date for one month.
func Calendar(subs []core.Subscription, year int, month time.Month, now time.Time) core.MonthCalendar {
	cal := core.MonthCalendar{
		Year:  year,
		Month: month,
		Dates: make(map[core.Date][]core.Subscription),
	}
	for _, sub := range subs {
		for _, d := range OccurrencesInMonth(sub, year, month, now) {
			cal.Dates[d] = append(cal.Dates[d], sub)
		}
	}
	return cal
}
