package format

import (
	"strings"
	"time"
)

// DateFormat names one of the supported date renderings.
type DateFormat string

const (
	Full         DateFormat = "full"         // 2 January 2006, 03:04 PM
	Short        DateFormat = "short"        // 02/01/2006
	MonthDay     DateFormat = "monthDay"     // Jan 2
	MonthDayYear DateFormat = "monthDayYear" // Jan 2, 2006
	WithYear     DateFormat = "withYear"     // 2 Jan 2006
	DateOnly     DateFormat = "dateOnly"     // 02-01-2006
	FullDate     DateFormat = "fullDate"     // Monday, 2 January 2006

	NotAvailable = "N/A"
)

var (
	layouts = map[DateFormat]string{
		Full:         "2 January 2006, 03:04 PM",
		Short:        "02/01/2006",
		MonthDay:     "Jan 2",
		MonthDayYear: "Jan 2, 2006",
		WithYear:     "2 Jan 2006",
		DateOnly:     "02-01-2006",
		FullDate:     "Monday, 2 January 2006",
	}

	// accepted input layouts, tried in order
	inputLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02",
		"02-01-2006",
		"02/01/2006",
	}
)

// Date renders t using f. Unknown formats fall back to WithYear; zero times render as "N/A".
func Date(t time.Time, f DateFormat) string {
	if t.IsZero() {
		return NotAvailable
	}
	layout, ok := layouts[f]
	if !ok {
		layout = layouts[WithYear]
	}
	return t.Format(layout)
}

// DateString parses s and renders it using f. Empty or unparsable input renders as "N/A".
func DateString(s string, f DateFormat) string {
	t, ok := ParseDate(s)
	if !ok {
		return NotAvailable
	}
	return Date(t, f)
}

// ParseDate parses the date representations found in stored and imported data.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateKey is the canonical YYYY-MM-DD key used to group records by day.
func DateKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
