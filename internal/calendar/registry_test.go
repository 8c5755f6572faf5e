package calendar

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func ymd(year, month, day int) civil.Date {
	return civil.Date{Year: year, Month: time.Month(month), Day: day}
}

// holidays2006 mirrors the 2006 seed data
func holidays2006() []Holiday {
	typ := func(short, name string) HolidayType {
		return HolidayType{ShortName: short, Name: name}
	}
	return []Holiday{
		{Date: ymd(2006, 12, 25), Type: typ("navidad", "Navidad")},
		{Date: ymd(2006, 1, 1), Type: typ("año_nuevo", "Año Nuevo")},
		{Date: ymd(2006, 1, 9), Type: typ("mártires", "Día de los Mártires")},
		{Date: ymd(2006, 2, 28), Type: typ("martes_carnaval", "Martes Carnaval")},
		{Date: ymd(2006, 4, 14), Type: typ("viernes_santo", "Viernes Santo")},
		{Date: ymd(2006, 5, 1), Type: typ("día_del_trabajo", "Día del Trabajador")},
		{Date: ymd(2006, 11, 3), Type: typ("separación_colombia", "Día de la Separación de Panamá de Colombia")},
		{Date: ymd(2006, 11, 5), Type: typ("colón", "Día de Colón")},
		{Date: ymd(2006, 11, 10), Type: typ("grito_independencia", "Primer Grito de Independencia")},
		{Date: ymd(2006, 11, 28), Type: typ("independencia_españa", "Independencia de Panamá de España")},
		{Date: ymd(2006, 12, 8), Type: typ("día_de_la_madre", "Día de la Madre")},
	}
}

func mustRegistry(t *testing.T, holidays []Holiday) *Registry {
	t.Helper()
	registry, err := NewRegistry(holidays)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return registry
}

func TestNewRegistry_SortsByDate(t *testing.T) {
	registry := mustRegistry(t, holidays2006())

	all := registry.All()
	if len(all) != 11 {
		t.Fatalf("Len = %d, want 11", len(all))
	}
	for i := 1; i < len(all); i++ {
		if !all[i-1].Date.Before(all[i].Date) {
			t.Errorf("holidays not ascending at %d: %v then %v", i, all[i-1].Date, all[i].Date)
		}
	}
}

func TestNewRegistry_RejectsDuplicates(t *testing.T) {
	holidays := append(holidays2006(), Holiday{Date: ymd(2006, 1, 9)})

	_, err := NewRegistry(holidays)
	if !errors.Is(err, ErrDuplicateHoliday) {
		t.Errorf("NewRegistry() error = %v, want ErrDuplicateHoliday", err)
	}
}

func TestRegistry_Bounds(t *testing.T) {
	registry := mustRegistry(t, holidays2006())

	earliest, err := registry.Earliest()
	if err != nil || earliest != ymd(2006, 1, 1) {
		t.Errorf("Earliest() = %v, %v, want 2006-01-01", earliest, err)
	}

	latest, err := registry.Latest()
	if err != nil || latest != ymd(2006, 12, 25) {
		t.Errorf("Latest() = %v, %v, want 2006-12-25", latest, err)
	}
}

func TestRegistry_Empty(t *testing.T) {
	registry := mustRegistry(t, nil)

	if _, err := registry.Earliest(); !errors.Is(err, ErrEmptyRegistry) {
		t.Errorf("Earliest() error = %v, want ErrEmptyRegistry", err)
	}
	if _, err := registry.Latest(); !errors.Is(err, ErrEmptyRegistry) {
		t.Errorf("Latest() error = %v, want ErrEmptyRegistry", err)
	}
	if registry.IsHoliday(ymd(2006, 1, 1)) {
		t.Error("IsHoliday() = true on empty registry")
	}
	if got := registry.CountInRange(ymd(2006, 1, 1), ymd(2006, 12, 31)); got != 0 {
		t.Errorf("CountInRange() = %d, want 0", got)
	}
}

func TestRegistry_CountInRange(t *testing.T) {
	registry := mustRegistry(t, holidays2006())

	tests := []struct {
		name string
		lo   civil.Date
		hi   civil.Date
		want int
	}{
		{"Whole year", ymd(2006, 1, 1), ymd(2006, 12, 31), 11},
		{"Bounds are inclusive", ymd(2006, 1, 1), ymd(2006, 1, 9), 2},
		{"Excluding first day", ymd(2006, 1, 2), ymd(2006, 1, 9), 1},
		{"November", ymd(2006, 11, 1), ymd(2006, 11, 30), 4},
		{"Single holiday day", ymd(2006, 4, 14), ymd(2006, 4, 14), 1},
		{"No holidays", ymd(2006, 6, 1), ymd(2006, 10, 31), 0},
		{"Reversed range", ymd(2006, 12, 31), ymd(2006, 1, 1), 0},
		{"Before all", ymd(2005, 1, 1), ymd(2005, 12, 31), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := registry.CountInRange(tt.lo, tt.hi); got != tt.want {
				t.Errorf("CountInRange(%v, %v) = %d, want %d", tt.lo, tt.hi, got, tt.want)
			}
			if got := len(registry.Between(tt.lo, tt.hi)); got != tt.want {
				t.Errorf("len(Between(%v, %v)) = %d, want %d", tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestRegistry_IsHoliday(t *testing.T) {
	registry := mustRegistry(t, holidays2006())

	tests := []struct {
		input civil.Date
		want  bool
	}{
		{ymd(2006, 1, 1), true},
		{ymd(2006, 1, 2), false},
		{ymd(2006, 11, 28), true},
		{ymd(2006, 12, 25), true},
		{ymd(2006, 12, 26), false},
		{ymd(2005, 12, 31), false},
	}

	for _, tt := range tests {
		if got := registry.IsHoliday(tt.input); got != tt.want {
			t.Errorf("IsHoliday(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}

	h, ok := registry.Holiday(ymd(2006, 1, 9))
	if !ok || h.Type.ShortName != "mártires" {
		t.Errorf("Holiday(2006-01-09) = %v, %v, want mártires", h, ok)
	}
}

func TestRegistry_BetweenReturnsCopy(t *testing.T) {
	registry := mustRegistry(t, holidays2006())

	between := registry.Between(ymd(2006, 1, 1), ymd(2006, 1, 31))
	between[0].Date = ymd(1999, 1, 1)

	if !registry.IsHoliday(ymd(2006, 1, 1)) {
		t.Error("mutating Between() result changed the registry")
	}
}
