package core

import (
	"sort"
	"time"
)

// Cost is a price expressed under each of the three periods.
type Cost struct {
	Weekly  float64
	Monthly float64
	Yearly  float64
}

// Totals is the aggregate spend of a snapshot. ByCategory holds monthly
// equivalents keyed by category.
type Totals struct {
	Weekly     float64
	Monthly    float64
	Yearly     float64
	ByCategory map[string]float64
}

// YearlyPerMonth is the yearly total spread over twelve months.
func (t Totals) YearlyPerMonth() float64 {
	return Round2(t.Yearly / 12)
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount float64
}

// Upcoming pairs a subscription with its next billing date.
type Upcoming struct {
	Subscription Subscription
	NextPayment  Date
}

// BudgetStatus compares monthly spend with the configured budget.
type BudgetStatus struct {
	Budget       float64
	Spent        float64
	Remaining    float64
	UsagePercent float64
	HasBudget    bool
	OverBudget   bool
}

// Overview is everything a dashboard needs for one reference instant.
type Overview struct {
	Now        Date
	Totals     Totals
	Budget     BudgetStatus
	Categories []CategoryAmount
	Upcoming   []Upcoming
	Settings   Settings
}

// MonthCalendar maps each billing date of a month to the subscriptions
// billing on it, in snapshot order.
type MonthCalendar struct {
	Year  int
	Month time.Month
	Dates map[Date][]Subscription
}

// Days returns the billing dates of the month in ascending order.
func (c MonthCalendar) Days() []Date {
	days := make([]Date, 0, len(c.Dates))
	for d := range c.Dates {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j].Time) })
	return days
}

// On returns the subscriptions billing on the given date.
func (c MonthCalendar) On(d Date) []Subscription {
	return c.Dates[d]
}
