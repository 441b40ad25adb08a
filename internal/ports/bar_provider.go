package ports

import (
	"context"
	"time"

	"github.com/icarofreire/bracketbot/internal/domain"
)

// BarProvider supplies the finite, pre-fetched bar series a simulation
// replays. Ragged per-symbol lengths are allowed.
type BarProvider interface {
	// FetchBars returns ordered bars per symbol for the given range.
	// Symbols with no data simply have no entry in the map.
	FetchBars(ctx context.Context, symbols []string, start, end time.Time) (map[string][]domain.Bar, error)
}
