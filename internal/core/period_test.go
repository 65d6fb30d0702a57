package core

import (
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
	}{
		{"Weekly", Weekly},
		{"weekly", Weekly},
		{"Monthly", Monthly},
		{"YEARLY", Yearly},
		{"", Monthly},
		{"biweekly", Monthly},
	}
	for _, tt := range tests {
		if got := ParsePeriod(tt.in); got != tt.want {
			t.Errorf("ParsePeriod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if Period("Daily").OrMonthly() != Monthly || Weekly.OrMonthly() != Weekly {
		t.Error("OrMonthly fallback broken")
	}
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name   string
		from   Date
		period Period
		want   Date
	}{
		{"weekly adds seven days", NewDate(2024, 1, 29), Weekly, NewDate(2024, 2, 5)},
		{"weekly across year end", NewDate(2024, 12, 28), Weekly, NewDate(2025, 1, 4)},
		{"monthly plain", NewDate(2024, 1, 15), Monthly, NewDate(2024, 2, 15)},
		{"monthly 31st into leap February", NewDate(2024, 1, 31), Monthly, NewDate(2024, 2, 29)},
		{"monthly 31st into February", NewDate(2023, 1, 31), Monthly, NewDate(2023, 2, 28)},
		{"monthly 31st into 30-day month", NewDate(2024, 3, 31), Monthly, NewDate(2024, 4, 30)},
		{"monthly December to January", NewDate(2024, 12, 31), Monthly, NewDate(2025, 1, 31)},
		{"yearly plain", NewDate(2024, 6, 1), Yearly, NewDate(2025, 6, 1)},
		{"yearly leap day", NewDate(2024, 2, 29), Yearly, NewDate(2025, 2, 28)},
		{"unknown period is monthly", NewDate(2024, 1, 31), Period("Daily"), NewDate(2024, 2, 29)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advance(tt.from.Time, tt.period)
			if !got.Equal(tt.want.Time) {
				t.Errorf("Advance(%v, %v) = %v, want %v", tt.from, tt.period, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestAddMonthsKeepsAnchorDay(t *testing.T) {
	start := time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC)
	want := []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30", "2024-05-31"}
	for k, w := range want {
		got := AddMonths(start, k)
		if got.Format("2006-01-02") != w {
			t.Errorf("AddMonths(start, %d) = %s, want %s", k, got.Format("2006-01-02"), w)
		}
		if h, m, _ := got.Clock(); h != 9 || m != 30 {
			t.Errorf("time of day not preserved: %v", got)
		}
	}
	if got := AddYears(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), 4); got.Format("2006-01-02") != "2028-02-29" {
		t.Errorf("leap anchor should come back in leap years, got %v", got)
	}
}

func TestClampDay(t *testing.T) {
	if ClampDay(2023, time.February, 31) != 28 || ClampDay(2024, time.February, 31) != 29 {
		t.Fatal("February clamp")
	}
	if ClampDay(2024, time.April, 15) != 15 || ClampDay(2024, time.April, 0) != 1 {
		t.Fatal("in-range clamp")
	}
	if DaysIn(2024, time.December) != 31 {
		t.Fatal("DaysIn December")
	}
}
