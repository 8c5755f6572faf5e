package dateutil

import (
	"iter"
	"time"

	"cloud.google.com/go/civil"
)

// DefaultLayout is the date layout used when none is configured
const DefaultLayout = "2006-01-02"

// Date builds a civil date from its parts
func Date(year int, month time.Month, day int) civil.Date {
	return civil.Date{Year: year, Month: month, Day: day}
}

// Today returns the current local date
func Today() civil.Date {
	return civil.DateOf(time.Now())
}

// Weekday returns the day of the week for the date
func Weekday(date civil.Date) time.Weekday {
	return date.In(time.UTC).Weekday()
}

// IsWeekday returns true if the date is Monday-Friday
func IsWeekday(date civil.Date) bool {
	weekday := Weekday(date)
	return weekday >= time.Monday && weekday <= time.Friday
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date civil.Date) bool {
	weekday := Weekday(date)
	return weekday == time.Saturday || weekday == time.Sunday
}

// FirstOfMonth returns the first day of the month
func FirstOfMonth(year int, month time.Month) civil.Date {
	return civil.Date{Year: year, Month: month, Day: 1}
}

// LastOfMonth returns the last day of the month
func LastOfMonth(year int, month time.Month) civil.Date {
	return civil.DateOf(time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC))
}

// DatesBetween yields every date after start up to and including end.
// The start date itself is never yielded; pass start.AddDays(-1) for an inclusive range.
func DatesBetween(start, end civil.Date) iter.Seq[civil.Date] {
	return func(yield func(civil.Date) bool) {
		for d := start.AddDays(1); !d.After(end); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// CountDays counts the dates in (start, end] accepted by match
func CountDays(start, end civil.Date, match func(civil.Date) bool) int {
	count := 0
	for d := range DatesBetween(start, end) {
		if match(d) {
			count++
		}
	}
	return count
}

// Parse parses a date string using layout, falling back to DefaultLayout when layout is empty
func Parse(layout, value string) (civil.Date, error) {
	if layout == "" {
		layout = DefaultLayout
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return civil.Date{}, err
	}
	return civil.DateOf(t), nil
}

// Format formats a date using layout, falling back to DefaultLayout when layout is empty
func Format(layout string, date civil.Date) string {
	if layout == "" {
		layout = DefaultLayout
	}
	return date.In(time.UTC).Format(layout)
}
