// Package timeutil parses the loosely formatted timestamps delivered by the
// remote order authority. The upstream store keeps timestamps as free text,
// so values arrive in several ISO-8601 variants, with or without seconds,
// with a trailing "Z" or " UTC", or as placeholder strings that mean "no
// value" ("Not Picked Up", "none", and friends).
package timeutil

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

var layouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// absentValues are placeholder strings the authority uses instead of null.
var absentValues = map[string]struct{}{
	"":              {},
	"not picked up": {},
	"not picked":    {},
	"not assigned":  {},
	"not started":   {},
	"not ended":     {},
	"none":          {},
	"null":          {},
	"0":             {},
}

// IsAbsent reports whether the value is empty or a known placeholder for
// "no value".
func IsAbsent(s string) bool {
	_, ok := absentValues[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Parse converts a remote timestamp string to a time.Time, trying the known
// layouts in order. Bare values are taken as kiosk-local wall time; a
// trailing "Z" or " UTC" marks the value as UTC.
func Parse(s string) (time.Time, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	loc := time.Local
	if strings.HasSuffix(t, "Z") {
		t = strings.TrimSuffix(t, "Z")
		loc = time.UTC
	}
	if strings.HasSuffix(strings.ToUpper(t), " UTC") {
		t = strings.TrimSpace(t[:len(t)-4])
		loc = time.UTC
	}
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, t, loc); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.Errorf("unrecognized timestamp format: %q", s)
}

// ParseOptional maps placeholders and unparsable values to nil. Sync uses it
// so a corrupt remote timestamp degrades to "absent" instead of poisoning the
// local replica.
func ParseOptional(s string) *time.Time {
	if IsAbsent(s) {
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return nil
	}
	return &parsed
}

// Format renders a timestamp the way the authority's API expects it
func Format(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
