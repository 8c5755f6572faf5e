package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/username/workday-calendar/internal/calendar"
	"github.com/username/workday-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

// SeedData is the JSON layout of a holiday seed file
type SeedData struct {
	Types    []calendar.HolidayType `json:"types"`
	Holidays []SeedHoliday          `json:"holidays"`
}

// SeedHoliday is a single holiday entry in a seed file
type SeedHoliday struct {
	Date        string `json:"date"`
	HolidayType string `json:"holiday_type"`
}

// FileSource implements Source using a local holiday file
type FileSource struct {
	filePath string
	logger   *zap.Logger
}

// NewFileSource creates a new FileSource instance
func NewFileSource(filePath string, logger *zap.Logger) *FileSource {
	return &FileSource{
		filePath: filePath,
		logger:   logger,
	}
}

// Load reads all holidays from the file, sorted by date
func (fs *FileSource) Load(ctx context.Context) ([]calendar.Holiday, error) {
	_, holidays, err := fs.LoadSeed(ctx)
	return holidays, err
}

// LoadSeed reads the holiday types and holidays from the file.
// JSON files hold SeedData (or a bare holiday array); any other file is read as
// text lines "YYYY-MM-DD short_name [display name]" and has no separate type list.
func (fs *FileSource) LoadSeed(ctx context.Context) ([]calendar.HolidayType, []calendar.Holiday, error) {
	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open holiday file: %w", err)
	}

	var types []calendar.HolidayType
	var holidays []calendar.Holiday
	if strings.EqualFold(filepath.Ext(fs.filePath), ".json") {
		seed, err := ParseSeedJSON(data)
		if err != nil {
			return nil, nil, err
		}
		types = seed.Types
		holidays = seed.Resolve(fs.logger)
	} else {
		holidays, err = fs.parseText(data)
		if err != nil {
			return nil, nil, err
		}
	}

	fs.logger.Info("Holiday file loaded",
		zap.String("file", fs.filePath),
		zap.Int("types", len(types)),
		zap.Int("holidays", len(holidays)))

	return types, holidays, nil
}

func (fs *FileSource) parseText(data []byte) ([]calendar.Holiday, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	var holidays []calendar.Holiday

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Format: YYYY-MM-DD short_name [display name]
		// Example: 2006-01-09 mártires Día de los Mártires
		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 2 {
			fs.logger.Warn("Invalid line format", zap.String("line", line))
			continue
		}

		date, err := dateutil.Parse(dateutil.DefaultLayout, parts[0])
		if err != nil {
			fs.logger.Warn("Failed to parse date", zap.String("date", parts[0]), zap.Error(err))
			continue
		}

		holidayType := calendar.HolidayType{ShortName: parts[1]}
		if len(parts) == 3 {
			holidayType.Name = strings.TrimSpace(parts[2])
		}

		holidays = append(holidays, calendar.Holiday{Date: date, Type: holidayType})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading holiday file: %w", err)
	}

	sortHolidays(holidays)
	return holidays, nil
}

// ParseSeedJSON decodes seed data from either an object with types and holidays
// or a bare array of holidays
func ParseSeedJSON(data []byte) (*SeedData, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var holidays []SeedHoliday
		if err := json.Unmarshal(trimmed, &holidays); err != nil {
			return nil, fmt.Errorf("failed to parse holiday JSON: %w", err)
		}
		return &SeedData{Holidays: holidays}, nil
	}

	var seed SeedData
	if err := json.Unmarshal(trimmed, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse holiday JSON: %w", err)
	}
	return &seed, nil
}

// Resolve converts seed entries to holidays sorted by date, attaching the display
// name of each known type. Entries with missing fields or bad dates are skipped.
func (s *SeedData) Resolve(logger *zap.Logger) []calendar.Holiday {
	types := make(map[string]calendar.HolidayType, len(s.Types))
	for _, t := range s.Types {
		types[t.ShortName] = t
	}

	holidays := make([]calendar.Holiday, 0, len(s.Holidays))
	for _, h := range s.Holidays {
		if h.Date == "" || h.HolidayType == "" {
			logger.Warn("Missing date or holiday_type", zap.Any("holiday", h))
			continue
		}

		date, err := dateutil.Parse(dateutil.DefaultLayout, h.Date)
		if err != nil {
			logger.Warn("Failed to parse date", zap.String("date", h.Date), zap.Error(err))
			continue
		}

		holidayType, ok := types[h.HolidayType]
		if !ok {
			holidayType = calendar.HolidayType{ShortName: h.HolidayType}
		}

		holidays = append(holidays, calendar.Holiday{Date: date, Type: holidayType})
	}

	sortHolidays(holidays)
	return holidays
}

func sortHolidays(holidays []calendar.Holiday) {
	sort.SliceStable(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
}
