package calendar

import (
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
)

// Registry is an immutable, date-ordered snapshot of holidays.
// Range queries are binary searches over the sorted records.
type Registry struct {
	holidays []Holiday
}

// NewRegistry builds a registry from holidays in any order.
// Two records sharing a date are rejected with ErrDuplicateHoliday.
func NewRegistry(holidays []Holiday) (*Registry, error) {
	sorted := make([]Holiday, len(holidays))
	copy(sorted, holidays)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date == sorted[i-1].Date {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateHoliday, sorted[i].Date)
		}
	}

	return &Registry{holidays: sorted}, nil
}

// Earliest returns the first known holiday date
func (r *Registry) Earliest() (civil.Date, error) {
	if len(r.holidays) == 0 {
		return civil.Date{}, ErrEmptyRegistry
	}
	return r.holidays[0].Date, nil
}

// Latest returns the last known holiday date
func (r *Registry) Latest() (civil.Date, error) {
	if len(r.holidays) == 0 {
		return civil.Date{}, ErrEmptyRegistry
	}
	return r.holidays[len(r.holidays)-1].Date, nil
}

// IsHoliday checks if the date is a registered holiday
func (r *Registry) IsHoliday(date civil.Date) bool {
	_, ok := r.Holiday(date)
	return ok
}

// Holiday returns the record registered for the date
func (r *Registry) Holiday(date civil.Date) (Holiday, bool) {
	i := r.lowerBound(date)
	if i < len(r.holidays) && r.holidays[i].Date == date {
		return r.holidays[i], true
	}
	return Holiday{}, false
}

// CountInRange counts holidays with lo <= date <= hi
func (r *Registry) CountInRange(lo, hi civil.Date) int {
	if hi.Before(lo) {
		return 0
	}
	return r.upperBound(hi) - r.lowerBound(lo)
}

// Between returns holidays with lo <= date <= hi in ascending order
func (r *Registry) Between(lo, hi civil.Date) []Holiday {
	if hi.Before(lo) {
		return nil
	}
	return append([]Holiday(nil), r.holidays[r.lowerBound(lo):r.upperBound(hi)]...)
}

// All returns every holiday in ascending order
func (r *Registry) All() []Holiday {
	return append([]Holiday(nil), r.holidays...)
}

// Len returns the number of holidays
func (r *Registry) Len() int {
	return len(r.holidays)
}

// lowerBound returns the index of the first holiday on or after date
func (r *Registry) lowerBound(date civil.Date) int {
	return sort.Search(len(r.holidays), func(i int) bool {
		return !r.holidays[i].Date.Before(date)
	})
}

// upperBound returns the index of the first holiday after date
func (r *Registry) upperBound(date civil.Date) int {
	return sort.Search(len(r.holidays), func(i int) bool {
		return r.holidays[i].Date.After(date)
	})
}
