package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/username/workday-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

// MaxWorkingDelta is the largest offset WorkingDelta accepts, roughly four thousand years
const MaxWorkingDelta = 1 << 20

// Calculator answers working day questions against a holiday registry
type Calculator struct {
	registry HolidayRegistry
	layout   string
	logger   *zap.Logger
}

// MonthWorkingDays is the working day count of one month
type MonthWorkingDays struct {
	Month       time.Month
	Year        int
	WorkingDays int
}

// FiscalYearReport is the month by month working day breakdown of a fiscal year
type FiscalYearReport struct {
	FiscalYear  FiscalYear
	Months      []MonthWorkingDays
	WorkingDays int
	// Remaining counts working days after the reference date up to the fiscal year end
	Remaining int
}

// RemainingPercent returns Remaining as a percentage of WorkingDays, 0 when the year has no working days
func (r *FiscalYearReport) RemainingPercent() float64 {
	if r.WorkingDays == 0 {
		return 0
	}
	return float64(r.Remaining) / float64(r.WorkingDays) * 100
}

// NewCalculator creates a calculator. layout is the format accepted for date strings;
// empty means dateutil.DefaultLayout.
func NewCalculator(registry HolidayRegistry, layout string, logger *zap.Logger) *Calculator {
	if layout == "" {
		layout = dateutil.DefaultLayout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Calculator{
		registry: registry,
		layout:   layout,
		logger:   logger,
	}
}

// Layout returns the date layout used for parsing and formatting
func (c *Calculator) Layout() string {
	return c.layout
}

// ParseDate parses a date string using the configured layout
func (c *Calculator) ParseDate(value string) (civil.Date, error) {
	date, err := dateutil.Parse(c.layout, strings.TrimSpace(value))
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %q does not match %q", ErrInvalidDateFormat, value, c.layout)
	}
	return date, nil
}

// ParseDays parses a working day offset
func (c *Calculator) ParseDays(value string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number of days", ErrInvalidDateFormat, value)
	}
	return days, nil
}

// ValidateDates checks that end does not precede start and that both dates
// lie within the span covered by the registry
func (c *Calculator) ValidateDates(start, end civil.Date) error {
	if end.Before(start) {
		return fmt.Errorf("%w: end date %s precedes start date %s", ErrInvalidRange, end, start)
	}

	last, err := c.registry.Latest()
	if err != nil {
		return err
	}
	if end.After(last) {
		return fmt.Errorf("%w: end date %s exceeds the last registered holiday %s", ErrOutOfBounds, end, last)
	}

	first, err := c.registry.Earliest()
	if err != nil {
		return err
	}
	if start.Before(first) {
		return fmt.Errorf("%w: start date %s precedes the first registered holiday %s", ErrOutOfBounds, start, first)
	}

	return nil
}

// WorkingDays counts the weekdays after start up to and including end, minus the
// registered holidays in that range. Holidays are subtracted even when they fall
// on a weekend.
func (c *Calculator) WorkingDays(start, end civil.Date) (int, error) {
	if err := c.ValidateDates(start, end); err != nil {
		return 0, err
	}

	weekdays := dateutil.CountDays(start, end, dateutil.IsWeekday)
	holidays := c.registry.CountInRange(start.AddDays(1), end)

	c.logger.Debug("Working days calculated",
		zap.Stringer("start", start),
		zap.Stringer("end", end),
		zap.Int("weekdays", weekdays),
		zap.Int("holidays", holidays))

	return weekdays - holidays, nil
}

// WorkingDaysBetween parses both dates and counts the working days between them
func (c *Calculator) WorkingDaysBetween(start, end string) (int, error) {
	startDate, err := c.ParseDate(start)
	if err != nil {
		return 0, err
	}
	endDate, err := c.ParseDate(end)
	if err != nil {
		return 0, err
	}
	return c.WorkingDays(startDate, endDate)
}

// WeekendDays counts Saturdays and Sundays after start up to and including end
func (c *Calculator) WeekendDays(start, end civil.Date) int {
	return dateutil.CountDays(start, end, dateutil.IsWeekend)
}

// WorkingDelta returns the date that is n working days after start.
// start itself is never counted; WorkingDelta(start, 0) is start.
func (c *Calculator) WorkingDelta(start civil.Date, n int) (civil.Date, error) {
	if n < 0 {
		return civil.Date{}, fmt.Errorf("%w: negative working day offset %d", ErrInvalidRange, n)
	}
	if n > MaxWorkingDelta {
		return civil.Date{}, fmt.Errorf("%w: working day offset %d exceeds %d", ErrInvalidRange, n, MaxWorkingDelta)
	}

	// Prefetch window only; the walk may run past it
	guess := start.AddDays(n + n/5*2 + 4)
	prefetched := make(map[civil.Date]struct{})
	for _, h := range c.registry.Between(start, guess) {
		prefetched[h.Date] = struct{}{}
	}
	isHoliday := func(d civil.Date) bool {
		if d.After(guess) {
			return c.registry.IsHoliday(d)
		}
		_, ok := prefetched[d]
		return ok
	}

	date := start
	count := 0
	for count < n {
		date = date.AddDays(1)
		if dateutil.IsWeekday(date) && !isHoliday(date) {
			count++
		}
	}

	c.logger.Debug("Working delta calculated",
		zap.Stringer("start", start),
		zap.Int("working_days", n),
		zap.Stringer("result", date),
		zap.Int("calendar_days", date.DaysSince(start)),
		zap.Bool("past_prefetch", date.After(guess)))

	return date, nil
}

// WorkingDeltaFrom parses the start date and the day offset and projects the date
func (c *Calculator) WorkingDeltaFrom(start, days string) (civil.Date, error) {
	startDate, err := c.ParseDate(start)
	if err != nil {
		return civil.Date{}, err
	}
	n, err := c.ParseDays(days)
	if err != nil {
		return civil.Date{}, err
	}
	return c.WorkingDelta(startDate, n)
}

// WorkingDaysInMonth counts the working days from the first to the last day of the month
func (c *Calculator) WorkingDaysInMonth(year int, month time.Month) (int, error) {
	if month < time.January || month > time.December {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMonth, int(month))
	}

	return c.WorkingDays(dateutil.FirstOfMonth(year, month), dateutil.LastOfMonth(year, month))
}

// FiscalYearBreakdown computes the working days of every month of the fiscal year,
// their total, and the working days left after today until the fiscal year ends
func (c *Calculator) FiscalYearBreakdown(fy FiscalYear, today civil.Date) (*FiscalYearReport, error) {
	report := &FiscalYearReport{
		FiscalYear: fy,
		Months:     make([]MonthWorkingDays, 0, 12),
	}

	for _, m := range fy.Months() {
		days, err := c.WorkingDaysInMonth(m.Year, m.Month)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate %s %d: %w", m.Month, m.Year, err)
		}
		report.Months = append(report.Months, MonthWorkingDays{
			Month:       m.Month,
			Year:        m.Year,
			WorkingDays: days,
		})
		report.WorkingDays += days
	}

	if !today.After(fy.EndDate) {
		remaining, err := c.WorkingDays(today, fy.EndDate)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate remaining working days: %w", err)
		}
		report.Remaining = remaining
	}

	c.logger.Info("Fiscal year breakdown calculated",
		zap.Int("fiscal_year", fy.Year),
		zap.Int("working_days", report.WorkingDays),
		zap.Int("remaining", report.Remaining))

	return report, nil
}

// DescribeDay classifies a single date
func (c *Calculator) DescribeDay(date civil.Date) DayInfo {
	if h, ok := c.registry.Holiday(date); ok {
		return DayInfo{Date: date, Type: DayTypeHoliday, Note: h.Type.String()}
	}
	if dateutil.IsWeekend(date) {
		return DayInfo{Date: date, Type: DayTypeWeekend}
	}
	return DayInfo{Date: date, Type: DayTypeWorkday, IsWorkday: true}
}

// MonthInfo classifies every day of the month
func (c *Calculator) MonthInfo(year int, month time.Month) (*MonthInfo, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMonth, int(month))
	}

	first := dateutil.FirstOfMonth(year, month)
	last := dateutil.LastOfMonth(year, month)

	monthInfo := &MonthInfo{
		Year:  year,
		Month: month,
		Days:  make([]DayInfo, 0, last.Day),
	}

	for date := range dateutil.DatesBetween(first.AddDays(-1), last) {
		day := c.DescribeDay(date)
		switch day.Type {
		case DayTypeWorkday:
			monthInfo.WorkDays++
		case DayTypeWeekend:
			monthInfo.Weekends++
		case DayTypeHoliday:
			monthInfo.Holidays++
		}
		monthInfo.Days = append(monthInfo.Days, day)
	}

	return monthInfo, nil
}
