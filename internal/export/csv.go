package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"subtrack/internal/core"
)

// CSVHeader is the column layout of the CSV export.
var CSVHeader = []string{"Name", "Price", "Currency", "Period", "Category", "Start Date", "Status"}

// WriteCSV writes one row per subscription in snapshot order. Prices are
// plain decimals so spreadsheets can sum them.
func WriteCSV(w io.Writer, subs []core.Subscription, settings core.Settings) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	code := settings.CurrencyOrDefault()
	for _, s := range subs {
		row := []string{
			s.Name,
			strconv.FormatFloat(s.Price, 'f', -1, 64),
			code,
			string(s.Period.OrMonthly()),
			s.Category,
			s.StartDate.String(),
			string(s.Status),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", s.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename returns the download name for an export made at now.
func Filename(ext string, now time.Time) string {
	return fmt.Sprintf("subtrack_export_%s.%s", now.Format("2006-01-02"), ext)
}
