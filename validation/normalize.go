package validation

import (
	"strings"
	"time"
)

// Dates outside today +/- this many days are rejected. Fixed, not
// configurable.
const (
	maxPastDays   = 365
	maxFutureDays = 365
)

// normalizeOptional trims an optional text field; whitespace-only becomes
// absent. Idempotent: normalizing twice yields the same result.
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// isBlank reports whether a required text field is empty after trimming
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

// dateOnly drops the time-of-day component so window comparisons work on
// calendar dates.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// checkWindow rejects dates more than 365 days in the past or future. The
// bounds themselves are accepted.
func (v *Validator) checkWindow(date time.Time, field, label string) *Error {
	today := dateOnly(v.now())
	d := dateOnly(date)
	min := today.AddDate(0, 0, -maxPastDays)
	max := today.AddDate(0, 0, maxFutureDays)
	if d.Before(min) {
		return outOfRange(field, "the "+label+" date cannot be before "+min.Format("2006-01-02"))
	}
	if d.After(max) {
		return outOfRange(field, "the "+label+" date cannot be after "+max.Format("2006-01-02"))
	}
	return nil
}
