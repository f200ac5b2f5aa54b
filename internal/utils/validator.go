package utils

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used by goals, reminders and health tips
const DateLayout = "2006-01-02"

// ValidateDate reports whether s is a YYYY-MM-DD calendar date
func ValidateDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Today returns the UTC calendar date of t
func Today(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// SanitizeEmail trims surrounding whitespace. Case is preserved since emails match exactly as stored.
func SanitizeEmail(email string) string {
	return strings.TrimSpace(email)
}
