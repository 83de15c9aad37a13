// Package dates parses the assorted date spellings the HR backend returns.
package dates

import (
	"strings"
	"time"
)

// layouts are tried in order; day-first forms win over month-first ones
// because the HR system never emits US-style dates.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"2006/01/02",
	"2006/1/2",
}

// Parse returns the calendar day s denotes. It never fails loudly: blank,
// sentinel or unrecognised input yields ok == false.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "invalid date") {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

// Day truncates t to midnight UTC of its own calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Format renders s as YYYY-MM-DD, or "" when it cannot be parsed.
func Format(s string) string {
	t, ok := Parse(s)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

// FormatTime renders a nullable timestamp as YYYY-MM-DD HH:MM, or "".
func FormatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// Range is an inclusive day range. A zero bound is open.
type Range struct {
	From time.Time
	To   time.Time
}

// Active reports whether either bound is set.
func (r Range) Active() bool {
	return !r.From.IsZero() || !r.To.IsZero()
}

// Equal compares two ranges by instant.
func (r Range) Equal(o Range) bool {
	return r.From.Equal(o.From) && r.To.Equal(o.To)
}

// Contains reports whether the raw date s falls inside the range. An
// unparsable or missing date is never contained.
func (r Range) Contains(s string) bool {
	t, ok := Parse(s)
	if !ok {
		return false
	}
	if !r.From.IsZero() && t.Before(Day(r.From)) {
		return false
	}
	if !r.To.IsZero() && t.After(Day(r.To)) {
		return false
	}
	return true
}

// ParseRange builds a Range from two optional textual bounds.
func ParseRange(from, to string) (Range, bool) {
	var r Range
	if strings.TrimSpace(from) != "" {
		t, ok := Parse(from)
		if !ok {
			return Range{}, false
		}
		r.From = t
	}
	if strings.TrimSpace(to) != "" {
		t, ok := Parse(to)
		if !ok {
			return Range{}, false
		}
		r.To = t
	}
	return r, true
}
