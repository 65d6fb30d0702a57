// Package http provides the JSON API over the subscription service.
//
// This file implements request decoding and query parameter parsing shared
// by the handlers.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"subtrack/internal/services"
)

const maxBodyBytes = 1 << 20

// MonthParams holds a parsed year/month pair.
type MonthParams struct {
	Year  int
	Month time.Month
}

// ParseMonthParams reads year and month from the query, defaulting to the
// month of now. Out of range values are rejected.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	params := MonthParams{Year: now.Year(), Month: now.Month()}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return MonthParams{}, fmt.Errorf("%w: year %q", services.ErrInvalidInput, v)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return MonthParams{}, fmt.Errorf("%w: month %q", services.ErrInvalidInput, v)
		}
		params.Month = time.Month(m)
	}
	return params, nil
}

// ParseLimit reads a positive limit from the query, falling back to def.
func ParseLimit(query url.Values, def int) (int, error) {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 100 {
		return 0, fmt.Errorf("%w: limit %q", services.ErrInvalidInput, v)
	}
	return n, nil
}

// decodeJSON reads a single JSON document from the request body into dst.
// errEmptyBody marks a request that carried no JSON document at all.
var errEmptyBody = errors.New("empty body")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", services.ErrInvalidInput, errEmptyBody)
		}
		return fmt.Errorf("%w: %w", services.ErrInvalidInput, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON body", services.ErrInvalidInput)
	}
	return nil
}

// sanitizeInput trims whitespace and drops control characters other than
// tab, newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
