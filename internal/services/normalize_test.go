package services

import (
	"math"
	"testing"

	"subtrack/internal/core"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		price  float64
		period core.Period
		want   core.Cost
	}{
		{"monthly", 12, core.Monthly, core.Cost{Weekly: 12 * 12.0 / 52, Monthly: 12, Yearly: 144}},
		{"yearly", 120, core.Yearly, core.Cost{Weekly: 120.0 / 52, Monthly: 10, Yearly: 120}},
		{"weekly", 10, core.Weekly, core.Cost{Weekly: 10, Monthly: 10 * 4.33, Yearly: 520}},
		{"unknown period is monthly", 12, core.Period("Quarterly"), core.Cost{Weekly: 12 * 12.0 / 52, Monthly: 12, Yearly: 144}},
		{"negative counts as zero", -5, core.Monthly, core.Cost{}},
		{"NaN counts as zero", math.NaN(), core.Yearly, core.Cost{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.price, tt.period)
			if got != tt.want {
				t.Errorf("Normalize(%v, %v) = %+v, want %+v", tt.price, tt.period, got, tt.want)
			}
		})
	}
}

func TestNormalizeMonthlyTimesTwelveIsYearly(t *testing.T) {
	for _, p := range []core.Period{core.Monthly, core.Yearly} {
		for _, price := range []float64{0, 0.99, 9.99, 120, 1234.56} {
			c := Normalize(price, p)
			if math.Abs(c.Monthly*12-c.Yearly) > 1e-9 {
				t.Errorf("%v %v: monthly*12 = %v, yearly = %v", p, price, c.Monthly*12, c.Yearly)
			}
		}
	}
}

func TestNormalizeScenarios(t *testing.T) {
	if got := core.Round2(Normalize(10, core.Weekly).Monthly); got != 43.3 {
		t.Errorf("weekly 10 monthly = %v, want 43.3", got)
	}
	yearly := Normalize(120, core.Yearly)
	if got := core.Round2(yearly.Monthly); got != 10.00 {
		t.Errorf("yearly 120 monthly = %v, want 10", got)
	}
	if got := core.Round2(yearly.Weekly); got != 2.31 {
		t.Errorf("yearly 120 weekly = %v, want 2.31", got)
	}
}
