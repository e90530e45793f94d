package input

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Time-of-day bounds for manual start time entry.
const (
	maxHours   = 23
	maxMinutes = 59
)

// SanitizeInteger strips every non-digit character from s and collapses
// leading zeros. The result is always a non-empty digit string; empty or
// all-non-digit input yields "0".
func SanitizeInteger(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")
	if digits == "" {
		return "0"
	}
	return digits
}

// ValidateInteger sanitizes s, parses it as a base-10 integer and clamps the
// result into [min, max]. def is returned only if the sanitized string still
// fails to parse (overflow), which keeps the function total.
func ValidateInteger(s string, min, max, def int) int {
	n, err := strconv.Atoi(SanitizeInteger(s))
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// ParseNumber parses s as a floating point number, returning def for the
// empty string, unparseable input, or NaN.
func ParseNumber(s string, def float64) float64 {
	if s == "" {
		return def
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) {
		return def
	}
	return n
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hours   int
	Minutes int
}

// ParseTimeOfDay parses a time entered as "HH:MM" (either part may be empty
// and counts as 0) or as a bare four-digit "HHMM". Both forms are accepted so
// the start-time editor allows quick numeric entry. Returns false for any
// other shape or for an out-of-range time.
func ParseTimeOfDay(s string) (TimeOfDay, bool) {
	s = strings.TrimSpace(s)

	var hs, ms string
	switch {
	case strings.Contains(s, ":"):
		parts := strings.Split(s, ":")
		if len(parts) != 2 {
			return TimeOfDay{}, false
		}
		hs, ms = parts[0], parts[1]
	case len(s) == 4 && allDigits(s):
		hs, ms = s[:2], s[2:]
	default:
		return TimeOfDay{}, false
	}

	hours, ok := parsePart(hs)
	if !ok {
		return TimeOfDay{}, false
	}
	minutes, ok := parsePart(ms)
	if !ok {
		return TimeOfDay{}, false
	}

	if hours < 0 || hours > maxHours || minutes < 0 || minutes > maxMinutes {
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hours: hours, Minutes: minutes}, true
}

// At returns the instant at this time of day (seconds zero) on day's date.
func (t TimeOfDay) At(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hours, t.Minutes, 0, 0, day.Location())
}

// Before reports whether this time of day, taken on now's date, is strictly
// earlier than now. Midnight is always before any later instant on the same
// day; no cross-midnight handling is attempted.
func (t TimeOfDay) Before(now time.Time) bool {
	return t.At(now).Before(now)
}

func parsePart(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
