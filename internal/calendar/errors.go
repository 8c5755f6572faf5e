package calendar

import "errors"

// Calculation errors. Callers match them with errors.Is.
var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidRange      = errors.New("invalid date range")
	ErrOutOfBounds       = errors.New("date outside known holidays")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrEmptyRegistry     = errors.New("no holidays registered")
	ErrDuplicateHoliday  = errors.New("duplicate holiday date")
)
