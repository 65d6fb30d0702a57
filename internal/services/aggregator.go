package services

import (
	"sort"
	"time"

	"subtrack/internal/core"
)

// ComputeTotals folds the snapshot into weekly, monthly and yearly spend.
// Paused subscriptions contribute nothing and do not create category keys.
// Rounding happens once, on the way out. The reference instant is accepted
// like every other engine entry point; the normalization table does not
// depend on it.
func ComputeTotals(subs []core.Subscription, _ time.Time) core.Totals {
	var weekly, monthly, yearly float64
	byCategory := make(map[string]float64)

	for _, sub := range subs {
		if sub.IsPaused() {
			continue
		}
		cost := Normalize(sub.Price, sub.Period)
		weekly += cost.Weekly
		monthly += cost.Monthly
		yearly += cost.Yearly
		byCategory[sub.CategoryOrDefault()] += cost.Monthly
	}

	for cat, v := range byCategory {
		byCategory[cat] = core.Round2(v)
	}

	return core.Totals{
		Weekly:     core.Round2(weekly),
		Monthly:    core.Round2(monthly),
		Yearly:     core.Round2(yearly),
		ByCategory: byCategory,
	}
}

// Upcoming lists active subscriptions by next billing date. Equal dates keep
// snapshot order. limit <= 0 returns everything.
func Upcoming(subs []core.Subscription, now time.Time, limit int) []core.Upcoming {
	out := make([]core.Upcoming, 0, len(subs))
	for _, sub := range subs {
		if sub.Status != core.Active {
			continue
		}
		out = append(out, core.Upcoming{
			Subscription: sub,
			NextPayment:  NextOccurrence(sub, now),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextPayment.Before(out[j].NextPayment.Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Budget compares the monthly total with the configured budget.
func Budget(totals core.Totals, settings core.Settings) core.BudgetStatus {
	status := core.BudgetStatus{
		Budget: settings.Budget,
		Spent:  totals.Monthly,
	}
	if settings.Budget <= 0 {
		return status
	}
	status.HasBudget = true
	status.Remaining = core.Round2(settings.Budget - totals.Monthly)
	status.UsagePercent = core.Round2(totals.Monthly / settings.Budget * 100)
	status.OverBudget = totals.Monthly > settings.Budget
	return status
}

// CategoryBreakdown returns the per-category monthly spend, largest first.
// Categories that round to zero are left out.
func CategoryBreakdown(totals core.Totals) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(totals.ByCategory))
	for name, amount := range totals.ByCategory {
		if amount <= 0 {
			continue
		}
		out = append(out, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// BuildOverview runs every dashboard computation over one snapshot.
func BuildOverview(subs []core.Subscription, settings core.Settings, now time.Time, upcomingLimit int) core.Overview {
	totals := ComputeTotals(subs, now)
	return core.Overview{
		Now:        core.DateOf(now),
		Totals:     totals,
		Budget:     Budget(totals, settings),
		Categories: CategoryBreakdown(totals),
		Upcoming:   Upcoming(subs, now, upcomingLimit),
		Settings:   settings,
	}
}
