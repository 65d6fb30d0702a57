package core

import (
	"math"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-01-15", NewDate(2024, 1, 15), true},
		{"2024-06-01T10:30:00Z", NewDate(2024, 6, 1), true},
		{"2024-06-01T23:30:00+02:00", NewDate(2024, 6, 1), true},
		{"", Date{}, false},
		{"15/01/2024", Date{}, false},
		{"2024-02-30", Date{}, false},
	}
	for i, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok && (err != nil || !got.Equal(tc.want.Time)) {
			t.Fatalf("case %d: expected %v, got %v (err=%v)", i, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestDateOrNow(t *testing.T) {
	now := time.Date(2024, 3, 20, 18, 45, 0, 0, time.UTC)
	if got := (Date{}).OrNow(now); !got.Equal(NewDate(2024, 3, 20).Time) {
		t.Fatalf("empty date should fall back to today, got %v", got)
	}
	start := NewDate(2024, 1, 15)
	if got := start.OrNow(now); !got.Equal(start.Time) {
		t.Fatalf("set date should be kept, got %v", got)
	}
	if (Date{}).String() != "" || start.String() != "2024-01-15" {
		t.Fatalf("unexpected String output")
	}
}

func TestParseStatus(t *testing.T) {
	if ParseStatus("paused") != Paused || ParseStatus(" PAUSED ") != Paused {
		t.Fatal("expected paused")
	}
	for _, s := range []string{"active", "", "cancelled"} {
		if ParseStatus(s) != Active {
			t.Fatalf("%q should map to active", s)
		}
	}
}

func TestSubscriptionValidate(t *testing.T) {
	good := Subscription{Name: "Netflix", Price: 12.99, Period: Monthly, Status: Active}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	free := good
	free.Price = 0
	if err := free.Validate(); err != nil {
		t.Fatalf("zero price should be valid, got %v", err)
	}

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	bads := []Subscription{
		{Name: "", Price: 1, Status: Active},
		{Name: "  ", Price: 1, Status: Active},
		{Name: string(long), Price: 1, Status: Active},
		{Name: "a", Price: -1, Status: Active},
		{Name: "a", Price: math.NaN(), Status: Active},
		{Name: "a", Price: 1, Status: Status("cancelled")},
	}
	for i, s := range bads {
		if err := s.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryOrDefault(t *testing.T) {
	if got := (Subscription{}).CategoryOrDefault(); got != DefaultCategory {
		t.Fatalf("got %q", got)
	}
	if got := (Subscription{Category: " Gaming "}).CategoryOrDefault(); got != "Gaming" {
		t.Fatalf("got %q", got)
	}
}

func TestSettings(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if err := (Settings{Budget: -5}).Validate(); err == nil {
		t.Fatal("negative budget should be rejected")
	}
	if got := (Settings{Currency: "usd"}).CurrencyOrDefault(); got != "USD" {
		t.Fatalf("got %q", got)
	}
	if got := (Settings{}).CurrencyOrDefault(); got != DefaultCurrency {
		t.Fatalf("got %q", got)
	}
}
