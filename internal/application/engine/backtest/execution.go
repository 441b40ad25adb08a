package backtest

import (
	"log/slog"

	"github.com/icarofreire/bracketbot/internal/domain"
)

// evaluationOrder fixes the deterministic tie-break within a step:
// entries first (a bracket's buy always fills before its exits are
// considered), then stop-losses before take-profits when one bar
// satisfies both.
var evaluationOrder = [3]domain.Trigger{
	domain.TriggerInstant,
	domain.TriggerLoss,
	domain.TriggerProfit,
}

// step evaluates every pending order against the bars at index t.
// Orders whose symbol has no bar this step stay pending for a later
// one. After the passes, the pending set is rebuilt by filtering into
// a fresh slice — never by removing elements mid-iteration.
func (e *Engine) step(t int) {
	for _, trigger := range evaluationOrder {
		for i := range e.pending {
			ord := &e.pending[i]
			if ord.Status != domain.StatusPending || ord.Trigger != trigger {
				continue
			}
			bar, ok := e.bars.At(ord.Symbol, t)
			if !ok {
				continue
			}
			price, hit := triggerPrice(ord, bar)
			if !hit {
				continue
			}
			e.fill(ord, price, t)
		}
	}
	e.compactPending()
}

// triggerPrice reports whether the order is eligible against the bar
// and at what price it fills. Instant orders fill at their own
// reference price (a market-at-proposal-price fill); conditionals fill
// at the close that crossed their threshold.
func triggerPrice(ord *domain.OrderRequest, bar domain.Bar) (float64, bool) {
	switch ord.Trigger {
	case domain.TriggerInstant:
		return ord.RefPrice, true
	case domain.TriggerProfit:
		return bar.Close, bar.Close >= ord.RefPrice
	case domain.TriggerLoss:
		return bar.Close, bar.Close <= ord.RefPrice
	}
	return 0, false
}

// fill applies one order to the ledger and records it. A ledger
// rejection still retires the order (FILLED without ledger effect) and
// is logged, never fatal. An exit fill cancels its group's remaining
// orders (one-cancels-other); a rejected entry cancels the group too,
// since no position exists for its exits to close.
func (e *Engine) fill(ord *domain.OrderRequest, price float64, t int) {
	record := domain.FillRecord{
		Step:     t,
		GroupID:  ord.GroupID,
		Symbol:   ord.Symbol,
		Side:     ord.Side,
		Trigger:  ord.Trigger,
		Quantity: ord.Quantity,
		Price:    price,
	}

	switch ord.Side {
	case domain.SideBuy:
		if err := e.ledger.Buy(ord.Symbol, ord.Quantity, price); err != nil {
			record.Rejected = true
			record.Reason = err.Error()
			slog.Warn("backtest: entry rejected", "symbol", ord.Symbol, "step", t, "err", err)
			e.cancelGroup(ord.GroupID)
		}
	case domain.SideSell:
		sold, err := e.ledger.Sell(ord.Symbol, ord.Quantity, price)
		if err != nil {
			record.Rejected = true
			record.Reason = err.Error()
			slog.Warn("backtest: exit rejected", "symbol", ord.Symbol, "step", t, "err", err)
		} else {
			record.Quantity = sold
		}
		e.cancelGroup(ord.GroupID)
	}

	ord.Status = domain.StatusFilled
	e.fills = append(e.fills, record)
}

// cancelGroup marks every still-pending order of the group cancelled.
func (e *Engine) cancelGroup(groupID string) {
	for i := range e.pending {
		sibling := &e.pending[i]
		if sibling.GroupID == groupID && sibling.Status == domain.StatusPending {
			sibling.Status = domain.StatusCancelled
		}
	}
}

// compactPending filters the still-pending orders into a new slice.
func (e *Engine) compactPending() {
	kept := make([]domain.OrderRequest, 0, len(e.pending))
	for _, ord := range e.pending {
		if ord.Status == domain.StatusPending {
			kept = append(kept, ord)
		}
	}
	e.pending = kept
}
