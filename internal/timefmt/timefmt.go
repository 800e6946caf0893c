// Package timefmt parses the due dates users type into the bot and renders
// timestamps for display.
package timefmt

import (
	"errors"
	"strings"
	"time"
)

const (
	// DisplayLayout is how every timestamp is shown to users.
	DisplayLayout = "02.01.2006 15:04"

	// Placeholder stands in for empty or absent values.
	Placeholder = "—"

	dateTimeInput = "2.1.2006 15:4"
	dateInput     = "2.1.2006"
)

var ErrInvalidDate = errors.New("invalid date format, expected DD.MM.YYYY or DD.MM.YYYY HH:MM")

// ParseDueDate accepts DD.MM.YYYY HH:MM when text contains a space and
// DD.MM.YYYY otherwise. Date-only input resolves to midnight in loc.
func ParseDueDate(text string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	text = strings.TrimSpace(text)

	layout := dateInput
	if strings.Contains(text, " ") {
		layout = dateTimeInput
	}

	t, err := time.ParseInLocation(layout, text, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Format renders t in loc, or Placeholder when t is nil or zero.
func Format(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return Placeholder
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DisplayLayout)
}

// OrPlaceholder returns s, or Placeholder when s is blank.
func OrPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
