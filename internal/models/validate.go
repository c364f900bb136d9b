package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar date format used everywhere in the store.
	DateLayout = "2006-01-02"
	// TimeLayout is the 24-hour time-of-day format.
	TimeLayout = "15:04"
	// MaxTextLength caps free-text fields such as descriptions and notes.
	MaxTextLength = 1000
)

// ValidationError describes a malformed field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ParseDate parses an ISO calendar date. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, invalid("date", "expected YYYY-MM-DD, got %q", s)
	}
	return d, nil
}

// ParseTimeOfDay normalizes a 24-hour H:MM or HH:MM value to HH:MM.
func ParseTimeOfDay(s string) (string, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return "", invalid("time", "expected HH:MM, got %q", s)
	}
	return t.Format(TimeLayout), nil
}

// DateOf returns the calendar date of t in its own location, as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func checkText(field, value string, required bool) error {
	if required && strings.TrimSpace(value) == "" {
		return invalid(field, "must not be empty")
	}
	if n := len([]rune(value)); n > MaxTextLength {
		return invalid(field, "too long (%d > %d characters)", n, MaxTextLength)
	}
	return nil
}

func checkOptionalText(field string, value *string) error {
	if value == nil {
		return nil
	}
	return checkText(field, *value, false)
}
