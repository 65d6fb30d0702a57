package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"subtrack/internal/core"
	"subtrack/internal/export"
	"subtrack/internal/services"
)

func renderSubscriptions(w io.Writer, subs []core.Subscription, settings core.Settings, now time.Time) {
	cur := export.GetCurrency(settings.CurrencyOrDefault())

	active := 0
	for _, s := range subs {
		if !s.IsPaused() {
			active++
		}
	}
	fmt.Fprintf(w, "%d subscriptions (%d active, %d paused)\n\n", len(subs), active, len(subs)-active)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Name", "Price", "Period", "Category", "Started", "Status", "Next Payment", "Monthly"})
	for _, s := range subs {
		next := "-"
		if !s.IsPaused() {
			next = services.NextOccurrence(s, now).String()
		}
		t.AppendRow(table.Row{
			shortID(s.ID),
			s.Name,
			cur.Format(s.Price),
			string(s.Period.OrMonthly()),
			s.CategoryOrDefault(),
			s.StartDate.String(),
			statusLabel(s),
			next,
			cur.Format(core.Round2(services.Normalize(s.Price, s.Period).Monthly)),
		})
	}
	t.Render()
}

func statusLabel(s core.Subscription) string {
	switch {
	case s.IsPaused():
		return text.FgRed.Sprint("PAUSED")
	case s.PauseAtRenewal:
		return text.FgYellow.Sprint("PAUSING")
	default:
		return text.FgGreen.Sprint("ACTIVE")
	}
}

// shortID keeps tables narrow; commands accept the full ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func renderTotals(w io.Writer, ov core.Overview) {
	cur := export.GetCurrency(ov.Settings.CurrencyOrDefault())

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Period", "Total"})
	t.AppendRows([]table.Row{
		{"Weekly", cur.Format(ov.Totals.Weekly)},
		{"Monthly", cur.Format(ov.Totals.Monthly)},
		{"Yearly", cur.Format(ov.Totals.Yearly)},
		{"Yearly / 12", cur.Format(ov.Totals.YearlyPerMonth())},
	})
	t.Render()

	if len(ov.Categories) > 0 {
		fmt.Fprintln(w)
		ct := table.NewWriter()
		ct.SetOutputMirror(w)
		ct.AppendHeader(table.Row{"Category", "Monthly"})
		for _, c := range ov.Categories {
			ct.AppendRow(table.Row{c.Name, cur.Format(c.Amount)})
		}
		ct.Render()
	}

	fmt.Fprintln(w)
	b := ov.Budget
	if !b.HasBudget {
		fmt.Fprintln(w, "Budget: not set")
		return
	}
	line := fmt.Sprintf("Budget: %s spent of %s (%.1f%%), %s remaining",
		cur.Format(b.Spent), cur.Format(b.Budget), b.UsagePercent, cur.Format(b.Remaining))
	if b.OverBudget {
		line = text.FgRed.Sprint(line)
	}
	fmt.Fprintln(w, line)
}

func renderUpcoming(w io.Writer, items []core.Upcoming, settings core.Settings, now time.Time) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No upcoming payments")
		return
	}
	cur := export.GetCurrency(settings.CurrencyOrDefault())
	today := core.DateOf(now)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Date", "In", "Name", "Price", "Period"})
	for _, u := range items {
		days := int(u.NextPayment.Sub(today.Time).Hours() / 24)
		t.AppendRow(table.Row{
			u.NextPayment.String(),
			dueLabel(days),
			u.Subscription.Name,
			cur.Format(u.Subscription.Price),
			string(u.Subscription.Period.OrMonthly()),
		})
	}
	t.Render()
}

func dueLabel(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

func renderCalendar(w io.Writer, cal core.MonthCalendar, settings core.Settings) {
	fmt.Fprintf(w, "%s %d\n\n", cal.Month, cal.Year)
	days := cal.Days()
	if len(days) == 0 {
		fmt.Fprintln(w, "No payments this month")
		return
	}
	cur := export.GetCurrency(settings.CurrencyOrDefault())

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Date", "Subscriptions", "Total"})
	var month float64
	for _, d := range days {
		subs := cal.On(d)
		names := make([]string, len(subs))
		var total float64
		for i, s := range subs {
			names[i] = s.Name
			total += s.Price
		}
		month += total
		t.AppendRow(table.Row{d.Format("Mon 02"), strings.Join(names, ", "), cur.Format(core.Round2(total))})
	}
	t.AppendFooter(table.Row{"", "Total", cur.Format(core.Round2(month))})
	t.Render()
}

func renderEvent(w io.Writer, e core.Event) {
	fmt.Fprintf(w, "%s  %-24s %s (%s) status=%s\n",
		e.Timestamp.Format(time.RFC3339), e.Type, e.Name, e.SubscriptionID, e.Status)
}
