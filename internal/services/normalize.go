package services

import (
	"math"

	"subtrack/internal/core"
)

const (
	// WeeksPerMonth is the fixed average used to turn weekly prices into
	// monthly ones. It is an approximation, not a calendar computation.
	WeeksPerMonth = 4.33
	WeeksPerYear  = 52
	MonthsPerYear = 12
)

// Normalize converts a price billed every period into its weekly, monthly
// and yearly equivalents. Nothing is rounded here.
//
// Negative and NaN prices are rejected upstream by core.ParsePrice and
// Subscription.Validate; if one slips through it counts as 0.
func Normalize(price float64, period core.Period) core.Cost {
	if price < 0 || math.IsNaN(price) {
		price = 0
	}
	switch period.OrMonthly() {
	case core.Yearly:
		return core.Cost{
			Weekly:  price / WeeksPerYear,
			Monthly: price / MonthsPerYear,
			Yearly:  price,
		}
	case core.Weekly:
		return core.Cost{
			Weekly:  price,
			Monthly: price * WeeksPerMonth,
			Yearly:  price * WeeksPerYear,
		}
	default:
		return core.Cost{
			Weekly:  price * MonthsPerYear / WeeksPerYear,
			Monthly: price,
			Yearly:  price * MonthsPerYear,
		}
	}
}
