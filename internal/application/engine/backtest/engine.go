// Package backtest replays historical bars through a strategy,
// matching the resulting bracket orders step by step against the bar
// series and keeping a ledger of cash and positions.
package backtest

import (
	"context"
	"log/slog"

	"github.com/icarofreire/bracketbot/internal/domain"
	"github.com/icarofreire/bracketbot/internal/strategy"
)

// Config holds the run parameters of a single backtest.
type Config struct {
	StartingPower float64
	Limits        strategy.Limits
}

// Engine drives one simulation run. It is the sole owner of the
// pending-order set and the equity curve; the whole run is
// single-threaded and deterministic — identical bars, strategy and
// starting capital always reproduce identical fills and equity.
type Engine struct {
	bars    *domain.History
	propose strategy.ProposeFunc
	cfg     Config

	ledger  *domain.Ledger
	pending []domain.OrderRequest
	fills   []domain.FillRecord
	equity  []float64
}

// New creates an Engine over the given bar history and strategy.
func New(bars *domain.History, propose strategy.ProposeFunc, cfg Config) *Engine {
	return &Engine{
		bars:    bars,
		propose: propose,
		cfg:     cfg,
		ledger:  domain.NewLedger(cfg.StartingPower),
	}
}

// Run replays every time step, then liquidates all remaining positions
// at each symbol's last close. Nothing inside the loop is fatal: data
// gaps, rejections and strategy faults are reported and skipped.
// Cancellation is honored at step boundaries only, so a cancelled run
// still returns a consistent partial result.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	steps := e.bars.Len()
	for t := 0; t < steps; t++ {
		if err := ctx.Err(); err != nil {
			return e.result(t), err
		}

		for _, p := range e.proposeSafe(t) {
			legs := domain.NewBracket(p.Symbol, p.Price, p.Quantity, p.TakeProfit, p.StopTrigger)
			e.pending = append(e.pending, legs[:]...)
		}

		e.step(t)
		e.refreshPrices(t)
		e.equity = append(e.equity, e.ledger.Equity())
	}

	e.liquidate(steps)
	e.equity = append(e.equity, e.ledger.Equity())

	return e.result(steps), nil
}

// proposeSafe invokes the strategy, converting a panic into an empty
// proposal list so the replay continues.
func (e *Engine) proposeSafe(t int) (proposals []strategy.Proposal) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("backtest: strategy fault, skipping step proposals", "step", t, "panic", r)
			proposals = nil
		}
	}()
	return e.propose(e.ledger, e.bars, t, e.cfg.Limits)
}

// refreshPrices marks every held position to the step's close when a
// bar is available, independent of fills.
func (e *Engine) refreshPrices(t int) {
	for _, symbol := range e.bars.Symbols() {
		bar, ok := e.bars.At(symbol, t)
		if !ok {
			continue
		}
		e.ledger.UpdatePrice(symbol, bar.Close)
	}
}

// liquidate closes every open position at its symbol's last close and
// logs the synthesized sells.
func (e *Engine) liquidate(step int) {
	fills := e.ledger.LiquidateAll(e.bars.LastClose)
	for _, f := range fills {
		e.fills = append(e.fills, domain.FillRecord{
			Step:     step,
			Symbol:   f.Symbol,
			Side:     domain.SideSell,
			Quantity: f.Quantity,
			Price:    f.Price,
			Reason:   "end-of-run liquidation",
		})
	}
}

func (e *Engine) result(steps int) *Result {
	return &Result{
		StartingPower: e.cfg.StartingPower,
		Steps:         steps,
		EquityCurve:   e.equity,
		Fills:         e.fills,
		Ledger:        e.ledger,
	}
}
