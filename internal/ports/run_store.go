package ports

import (
	"context"
	"time"

	"github.com/icarofreire/bracketbot/internal/domain"
)

// RunRecord is a completed simulation run as persisted by a RunStore:
// the run's parameters plus its outputs (fill log, equity curve, final
// snapshot). The engine itself never reads this back mid-run.
type RunRecord struct {
	StartedAt     time.Time
	Strategy      string
	Symbols       []string
	StartingPower float64
	FinalEquity   float64
	Steps         int
	Fills         []domain.FillRecord
	EquityCurve   []float64
}

// RunSummary is the one-line view of an archived run.
type RunSummary struct {
	ID            int64
	StartedAt     time.Time
	Strategy      string
	Symbols       []string
	StartingPower float64
	FinalEquity   float64
	Steps         int
	Fills         int
}

// RunStore archives completed runs.
type RunStore interface {
	// SaveRun persists one completed run with its fills and curve.
	SaveRun(ctx context.Context, run RunRecord) (int64, error)

	// GetRuns returns the most recent archived runs, newest first.
	GetRuns(ctx context.Context, limit int) ([]RunSummary, error)

	// Close releases the underlying database.
	Close() error
}
