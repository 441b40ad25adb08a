package ports

import (
	"context"

	"github.com/icarofreire/bracketbot/internal/domain"
)

// Broker is the live trading boundary: account state, venue clock and
// bracket submission. Every failure from this boundary is logged and
// retried on the next poll, never propagated as fatal.
type Broker interface {
	// Account returns the current account snapshot.
	Account(ctx context.Context) (domain.AccountSnapshot, error)

	// Clock reports whether the market is open and when that changes.
	Clock(ctx context.Context) (domain.MarketClock, error)

	// SubmitBracket places an entry order with linked take-profit and
	// stop-loss exits, returning the broker's order ID.
	SubmitBracket(ctx context.Context, ticket domain.BracketTicket) (string, error)
}
