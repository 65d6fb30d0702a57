package export

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"subtrack/internal/core"
)

func snapshot() []core.Subscription {
	return []core.Subscription{
		{ID: "1", Name: "Netflix", Price: 13.49, Period: core.Monthly, StartDate: core.NewDate(2024, 1, 15), Status: core.Active, Category: "Entertainment"},
		{ID: "2", Name: "Domain, personal", Price: 120, Period: core.Yearly, StartDate: core.NewDate(2023, 6, 1), Status: core.Active},
		{ID: "3", Name: "Gym", Price: 30, Period: core.Monthly, Status: core.Paused, Category: "Health"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, snapshot(), core.Settings{Currency: "usd"}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv back: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}
	if !reflect.DeepEqual(records[0], CSVHeader) {
		t.Errorf("header = %v", records[0])
	}

	want := [][]string{
		{"Netflix", "13.49", "USD", "Monthly", "Entertainment", "2024-01-15", "active"},
		{"Domain, personal", "120", "USD", "Yearly", "", "2023-06-01", "active"},
		{"Gym", "30", "USD", "Monthly", "Health", "", "paused"},
	}
	if !reflect.DeepEqual(records[1:], want) {
		t.Errorf("rows = %v, want %v", records[1:], want)
	}
}

func TestFilename(t *testing.T) {
	got := Filename("csv", time.Date(2024, 3, 20, 23, 0, 0, 0, time.UTC))
	if got != "subtrack_export_2024-03-20.csv" {
		t.Errorf("Filename() = %q", got)
	}
}

func TestWriteXLSX(t *testing.T) {
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, snapshot(), core.Settings{Budget: 50, Currency: "EUR"}, now); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{SheetSubscriptions, SheetSummary}) {
		t.Errorf("sheets = %v", got)
	}

	rows, err := f.GetRows(SheetSubscriptions)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("subscription rows = %d, want 4", len(rows))
	}
	if rows[0][7] != "Monthly" || rows[0][8] != "Next Payment" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][8] != "2024-04-15" {
		t.Errorf("Netflix next payment = %q, want 2024-04-15", rows[1][8])
	}
	if len(rows[3]) > 8 && rows[3][8] != "" {
		t.Errorf("paused subscription should have no next payment, got %q", rows[3][8])
	}

	monthly, err := f.GetCellValue(SheetSummary, "B5", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if monthly != "23.49" {
		t.Errorf("summary monthly = %q, want 23.49", monthly)
	}
	label, _ := f.GetCellValue(SheetSummary, "A14")
	if label != "Entertainment" {
		t.Errorf("largest category = %q, want Entertainment", label)
	}
}

func TestCurrencyFormat(t *testing.T) {
	tests := []struct {
		code   string
		amount float64
		want   string
	}{
		{"USD", 1234.5, "$1,234.50"},
		{"usd", 0, "$0.00"},
		{"XYZ", 100, "100.00 XYZ"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := GetCurrency(tt.code).Format(tt.amount); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestCurrencyFormatEUR(t *testing.T) {
	got := GetCurrency("EUR").Format(13.49)
	if !strings.HasPrefix(got, "13,49") || !strings.HasSuffix(got, "€") {
		t.Errorf("Format(13.49) = %q, want French formatting with euro suffix", got)
	}
}
