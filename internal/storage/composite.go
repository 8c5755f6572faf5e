package storage

import (
	"context"

	"github.com/username/workday-calendar/internal/calendar"
	"go.uber.org/zap"
)

// CompositeSource implements Source with fallback strategy
// Primary: SQLiteStore (database)
// Fallback: FileSource (seed file)
type CompositeSource struct {
	primary  Source
	fallback Source
	logger   *zap.Logger
}

// NewCompositeSource creates a new CompositeSource
func NewCompositeSource(primary, fallback Source, logger *zap.Logger) *CompositeSource {
	return &CompositeSource{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Load reads holidays from the primary source, falling back when it fails or is empty
func (cs *CompositeSource) Load(ctx context.Context) ([]calendar.Holiday, error) {
	holidays, err := cs.primary.Load(ctx)
	if err == nil && len(holidays) > 0 {
		return holidays, nil
	}

	if err != nil {
		cs.logger.Warn("Primary holiday source failed, falling back",
			zap.Error(err))
	} else {
		cs.logger.Warn("Primary holiday source is empty, falling back")
	}

	return cs.fallback.Load(ctx)
}
