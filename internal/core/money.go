// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing prices from strings and for the
// two-decimal rounding applied to every reported total.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParsePrice converts a decimal string to a price.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs are
// rejected: prices are never negative. Zero is a valid price (free tiers).
//
// Examples:
//
//	ParsePrice("12.34") -> 12.34, nil
//	ParsePrice("12,34") -> 12.34, nil
//	ParsePrice("-1")    -> 0, ErrInvalidPrice
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPrice
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidPrice
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidPrice
	}
	digits := 0
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return 0, ErrInvalidPrice
			}
			digits++
		}
	}
	if digits == 0 {
		return 0, ErrInvalidPrice
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, ErrInvalidPrice
	}
	return v, nil
}

// Round2 rounds half away from zero on v*100, then divides by 100.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
