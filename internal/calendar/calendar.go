package calendar

import (
	"time"

	"cloud.google.com/go/civil"
)

// DayType represents the type of day
type DayType int

const (
	DayTypeWorkday DayType = iota + 1
	DayTypeWeekend
	DayTypeHoliday
)

// String returns the lowercase name of the day type
func (t DayType) String() string {
	switch t {
	case DayTypeWorkday:
		return "workday"
	case DayTypeWeekend:
		return "weekend"
	case DayTypeHoliday:
		return "holiday"
	default:
		return "unknown"
	}
}

// DayInfo represents information about a specific day
type DayInfo struct {
	Date      civil.Date
	Type      DayType
	IsWorkday bool
	Note      string
}

// MonthInfo represents calendar information for a month.
// Every day of the month is classified exactly once; a holiday on a weekend counts as a holiday.
type MonthInfo struct {
	Year     int
	Month    time.Month
	WorkDays int
	Weekends int
	Holidays int
	Days     []DayInfo
}

// HolidayRegistry is a read-only view over the known holidays
type HolidayRegistry interface {
	// Earliest returns the first known holiday date
	Earliest() (civil.Date, error)

	// Latest returns the last known holiday date
	Latest() (civil.Date, error)

	// IsHoliday checks if the date is a registered holiday
	IsHoliday(date civil.Date) bool

	// Holiday returns the record registered for the date
	Holiday(date civil.Date) (Holiday, bool)

	// CountInRange counts holidays with lo <= date <= hi
	CountInRange(lo, hi civil.Date) int

	// Between returns holidays with lo <= date <= hi in ascending order
	Between(lo, hi civil.Date) []Holiday
}
