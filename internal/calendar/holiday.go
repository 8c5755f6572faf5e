package calendar

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// HolidayType is a named kind of holiday, keyed by its short name
type HolidayType struct {
	ShortName string `json:"short_name"`
	Name      string `json:"name"`
}

func (t HolidayType) String() string {
	if t.Name == "" {
		return t.ShortName
	}
	return t.Name
}

// Holiday is a single non-working date.
// FiscalYear is derived from Date; zero means it has not been backfilled yet.
type Holiday struct {
	Date       civil.Date
	Type       HolidayType
	FiscalYear int
}

func (h Holiday) String() string {
	return fmt.Sprintf("%s %s", h.Date, h.Type)
}

// WithFiscalYear returns a copy of the holiday with FiscalYear computed from its date
func (h Holiday) WithFiscalYear() Holiday {
	h.FiscalYear = FiscalYearFor(h.Date).Year
	return h
}
