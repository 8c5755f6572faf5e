package storage

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/username/workday-calendar/internal/calendar"
	"go.uber.org/zap"
)

//go:embed seed/default.json
var defaultSeed []byte

// SeedResult summarizes a seed run
type SeedResult struct {
	Types       int
	Created     int
	Updated     int
	Skipped     int
	FiscalYears int
}

// DefaultSeed returns the embedded holiday types and holidays
func DefaultSeed(logger *zap.Logger) ([]calendar.HolidayType, []calendar.Holiday, error) {
	data, err := ParseSeedJSON(defaultSeed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse embedded seed: %w", err)
	}
	return data.Types, data.Resolve(logger), nil
}

// EmbeddedSource is a Source backed by the embedded default seed
type EmbeddedSource struct {
	logger *zap.Logger
}

// NewEmbeddedSource creates a new EmbeddedSource
func NewEmbeddedSource(logger *zap.Logger) *EmbeddedSource {
	return &EmbeddedSource{logger: logger}
}

// Load implements Source
func (es *EmbeddedSource) Load(ctx context.Context) ([]calendar.Holiday, error) {
	_, holidays, err := DefaultSeed(es.logger)
	return holidays, err
}

// Seed upserts holiday types and holidays into the store and backfills fiscal years.
// A holiday already stored with the same type is skipped; a different type is updated.
func Seed(ctx context.Context, store *SQLiteStore, types []calendar.HolidayType, holidays []calendar.Holiday, logger *zap.Logger) (*SeedResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := &SeedResult{}

	seen := make(map[string]bool, len(types))
	for _, t := range types {
		if err := store.SaveType(ctx, t); err != nil {
			return nil, err
		}
		seen[t.ShortName] = true
		result.Types++
	}

	for _, h := range holidays {
		// Named types carried by the holiday records themselves, e.g. from text seed files
		if !seen[h.Type.ShortName] && h.Type.Name != "" {
			if err := store.SaveType(ctx, h.Type); err != nil {
				return nil, err
			}
			seen[h.Type.ShortName] = true
			result.Types++
		}

		existing, found, err := store.Get(ctx, h.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to look up holiday %s: %w", h.Date, err)
		}

		switch {
		case !found:
			result.Created++
		case existing.Type.ShortName == h.Type.ShortName:
			result.Skipped++
			continue
		default:
			logger.Info("Holiday type changed",
				zap.Stringer("date", h.Date),
				zap.String("old_type", existing.Type.ShortName),
				zap.String("new_type", h.Type.ShortName))
			result.Updated++
		}

		// Fiscal year is recomputed by the backfill below
		h.FiscalYear = 0
		if err := store.Save(ctx, h); err != nil {
			return nil, err
		}
	}

	updated, err := store.UpdateFiscalYears(ctx)
	if err != nil {
		return nil, err
	}
	result.FiscalYears = updated

	logger.Info("Seed completed",
		zap.Int("types", result.Types),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("fiscal_years", result.FiscalYears))

	return result, nil
}
