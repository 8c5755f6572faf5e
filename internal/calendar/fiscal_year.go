package calendar

import (
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
)

const (
	// DefaultFiscalYearDisplay is the label template used by FiscalYear.String
	DefaultFiscalYearDisplay = "FY%s"
	// DefaultFiscalYearLength is the offset into the year digits used by FiscalYear.String
	DefaultFiscalYearLength = 2

	fiscalYearStartMonth = time.October
)

// FiscalYear runs from October 1 of Year-1 through September 30 of Year
type FiscalYear struct {
	Year      int
	StartDate civil.Date
	EndDate   civil.Date
}

// MonthOfYear is a calendar month paired with the calendar year it falls in
type MonthOfYear struct {
	Month time.Month
	Year  int
}

// NewFiscalYear creates the fiscal year ending in September of year
func NewFiscalYear(year int) FiscalYear {
	return FiscalYear{
		Year:      year,
		StartDate: civil.Date{Year: year - 1, Month: fiscalYearStartMonth, Day: 1},
		EndDate:   civil.Date{Year: year, Month: time.September, Day: 30},
	}
}

// FiscalYearFor returns the fiscal year containing date
func FiscalYearFor(date civil.Date) FiscalYear {
	startOfFY := civil.Date{Year: date.Year, Month: fiscalYearStartMonth, Day: 1}
	if !date.Before(startOfFY) {
		return NewFiscalYear(date.Year + 1)
	}
	return NewFiscalYear(date.Year)
}

// CurrentFiscalYear returns the fiscal year containing now
func CurrentFiscalYear(now time.Time) FiscalYear {
	return FiscalYearFor(civil.DateOf(now))
}

// Contains reports whether date falls inside the fiscal year
func (fy FiscalYear) Contains(date civil.Date) bool {
	return !date.Before(fy.StartDate) && !date.After(fy.EndDate)
}

// Months returns the twelve months of the fiscal year in chronological order,
// October of Year-1 first and September of Year last
func (fy FiscalYear) Months() [12]MonthOfYear {
	var months [12]MonthOfYear
	for i := range months {
		month := fiscalYearStartMonth + time.Month(i)
		year := fy.Year - 1
		if month > time.December {
			month -= 12
			year = fy.Year
		}
		months[i] = MonthOfYear{Month: month, Year: year}
	}
	return months
}

// Label renders the fiscal year with a display template and the year digits from offset on.
// Label("FY%s", 2) for 2016 gives "FY16".
func (fy FiscalYear) Label(display string, offset int) string {
	digits := strconv.Itoa(fy.Year)
	if offset < 0 || offset > len(digits) {
		offset = 0
	}
	return fmt.Sprintf(display, digits[offset:])
}

func (fy FiscalYear) String() string {
	return fy.Label(DefaultFiscalYearDisplay, DefaultFiscalYearLength)
}
