package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"subtrack/internal/core"
	"subtrack/internal/services"
)

const (
	SheetSubscriptions = "Subscriptions"
	SheetSummary       = "Summary"
)

// WriteXLSX writes a workbook with the subscription list (plus monthly
// equivalent and next payment) and a summary of totals, budget and
// categories as of now.
func WriteXLSX(w io.Writer, subs []core.Subscription, settings core.Settings, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSubscriptions); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeSubscriptionsSheet(f, subs, settings, now, bold, money); err != nil {
		return err
	}
	if err := writeSummarySheet(f, subs, settings, now, bold, money); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeSubscriptionsSheet(f *excelize.File, subs []core.Subscription, settings core.Settings, now time.Time, bold, money int) error {
	header := append(append([]string{}, CSVHeader...), "Monthly", "Next Payment")
	if err := setRow(f, SheetSubscriptions, 1, toAny(header)); err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetSubscriptions, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	code := settings.CurrencyOrDefault()
	for i, s := range subs {
		next := ""
		if s.Status == core.Active {
			next = services.NextOccurrence(s, now).String()
		}
		row := []any{
			s.Name,
			s.Price,
			code,
			string(s.Period.OrMonthly()),
			s.Category,
			s.StartDate.String(),
			string(s.Status),
			core.Round2(services.Normalize(s.Price, s.Period).Monthly),
			next,
		}
		if err := setRow(f, SheetSubscriptions, i+2, row); err != nil {
			return err
		}
	}

	if len(subs) > 0 {
		last := len(subs) + 1
		for _, col := range []string{"B", "H"} {
			if err := f.SetCellStyle(SheetSubscriptions, col+"2", fmt.Sprintf("%s%d", col, last), money); err != nil {
				return fmt.Errorf("style amounts: %w", err)
			}
		}
	}
	return f.SetColWidth(SheetSubscriptions, "A", "I", 16)
}

func writeSummarySheet(f *excelize.File, subs []core.Subscription, settings core.Settings, now time.Time, bold, money int) error {
	overview := services.BuildOverview(subs, settings, now, 0)
	cur := GetCurrency(settings.CurrencyOrDefault())

	rows := [][]any{
		{"As of", overview.Now.String()},
		{"Currency", cur.Code},
		{},
		{"Weekly", overview.Totals.Weekly},
		{"Monthly", overview.Totals.Monthly},
		{"Yearly", overview.Totals.Yearly},
		{"Yearly per month", overview.Totals.YearlyPerMonth()},
		{},
		{"Budget", overview.Budget.Budget},
		{"Remaining", overview.Budget.Remaining},
		{"Usage %", overview.Budget.UsagePercent},
		{},
		{"Category", "Monthly", "Display"},
	}
	for _, c := range overview.Categories {
		rows = append(rows, []any{c.Name, c.Amount, cur.Format(c.Amount)})
	}

	for i, row := range rows {
		if err := setRow(f, SheetSummary, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetSummary, "B4", "B11", money); err != nil {
		return fmt.Errorf("style totals: %w", err)
	}
	if err := f.SetCellStyle(SheetSummary, "A13", "C13", bold); err != nil {
		return fmt.Errorf("style category header: %w", err)
	}
	return f.SetColWidth(SheetSummary, "A", "C", 18)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
