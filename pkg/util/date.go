package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayouts are the date formats accepted in datasets and requests, tried in order.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"01/02/2006",
}

// DateError reports an unusable date bound. Field is "from" or "to".
type DateError struct {
	Field string
	Value string
	Msg   string
}

func (e *DateError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("invalid %s date %q", e.Field, e.Value)
}

// ParseTime accepts RFC3339 (with or without nanoseconds) or positive unix seconds.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseDate parses s with DateLayouts, falling back to ParseTime, and
// truncates the result to its UTC calendar day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}
	if t, ok := ParseTime(s); ok {
		return Day(t), true
	}
	return time.Time{}, false
}

// ParseDateRange parses optional from/to bounds. Empty bounds stay zero.
// Failures are *DateError.
func ParseDateRange(from, to string) (time.Time, time.Time, error) {
	var f, t time.Time
	if from != "" {
		d, ok := ParseDate(from)
		if !ok {
			return f, t, &DateError{Field: "from", Value: from}
		}
		f = d
	}
	if to != "" {
		d, ok := ParseDate(to)
		if !ok {
			return f, t, &DateError{Field: "to", Value: to}
		}
		t = d
	}
	if !f.IsZero() && !t.IsZero() && f.After(t) {
		return f, t, &DateError{Field: "from", Value: from, Msg: fmt.Sprintf("from %s is after to %s", from, to)}
	}
	return f, t, nil
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
