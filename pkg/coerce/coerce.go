// Package coerce converts raw cell text into the typed values canonical
// listing fields declare
package coerce

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// numberCleaner strips the formatting brokers put on numeric cells
var numberCleaner = strings.NewReplacer("$", "", ",", "", "%", "", " ", "")

// Number parses a numeric cell. Currency symbols, thousands separators, and
// percent signs are stripped before parsing.
func Number(s string) (float64, error) {
	cleaned := numberCleaner.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return n, nil
}

// Bool parses the truthy/falsy spellings spreadsheets use
func Bool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "t":
		return true, nil
	case "false", "no", "n", "0", "f":
		return false, nil
	default:
		return false, fmt.Errorf("%q is not a boolean", s)
	}
}

// dateLayouts are tried in order; the first parse wins
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"01-02-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// Date parses a date cell against the layouts broker exports use
func Date(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date value")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a recognized date", s)
}

// List splits a multi-value cell on commas, semicolons, pipes, or newlines
// and drops empty entries
func List(s string) []string {
	split := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '\n' || r == '\r'
	})

	var values []string
	for _, v := range split {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
