// Package timeutil converts flexible date/time input into canonical timestamps.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for precise timestamps. Bare-date layouts are handled
// separately because they need the end-of-day policy applied.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
}

// Normalize parses input into a timestamp in the canonical location loc.
// Blank input means "unset" and yields nil. A bare calendar date resolves to
// midnight, or to the last instant of the day when preferEndOfDay is set.
func Normalize(input string, loc *time.Location, preferEndOfDay bool) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, input, loc); err == nil {
			parsed = parsed.In(loc)
			return &parsed, nil
		}
	}

	for _, layout := range dateLayouts {
		parsed, err := time.ParseInLocation(layout, input, loc)
		if err != nil {
			continue
		}
		if preferEndOfDay {
			parsed = EndOfDay(parsed)
		}
		return &parsed, nil
	}

	return nil, fmt.Errorf("unrecognized date or time %q", input)
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
