// Package live runs the fixed-interval paper/live trading loop: each
// cycle pulls a fresh account snapshot and recent bars from the broker
// boundary, re-invokes the same strategy and bracket builder the
// backtest uses, and submits real bracket orders. It owns its own
// account snapshot and never shares a backtest ledger.
package live

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/icarofreire/bracketbot/internal/domain"
	"github.com/icarofreire/bracketbot/internal/ports"
	"github.com/icarofreire/bracketbot/internal/strategy"
)

const defaultLookbackBars = 30

// Config holds the live loop settings.
type Config struct {
	Symbols      []string
	Limits       strategy.Limits
	TimeInForce  string
	LookbackDays int
}

// CycleResult summarizes one polling cycle.
type CycleResult struct {
	MarketOpen  bool
	BuyingPower float64
	Equity      float64
	Proposals   int
	Submitted   int
	OrderIDs    []string
	Errors      []string
}

// Engine polls the broker boundary and places bracket orders. Every
// provider failure is logged and retried on the next interval; a cycle
// never terminates the loop.
type Engine struct {
	broker  ports.Broker
	bars    ports.BarProvider
	propose strategy.ProposeFunc
	cfg     Config
}

// New creates a live engine wired to the given broker and data
// provider.
func New(broker ports.Broker, bars ports.BarProvider, propose strategy.ProposeFunc, cfg Config) *Engine {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = defaultLookbackBars
	}
	if cfg.TimeInForce == "" {
		cfg.TimeInForce = "gtc"
	}
	return &Engine{
		broker:  broker,
		bars:    bars,
		propose: propose,
		cfg:     cfg,
	}
}

// RunOnce executes a single polling cycle.
func (le *Engine) RunOnce(ctx context.Context) (*CycleResult, error) {
	result := &CycleResult{}

	clock, err := le.broker.Clock(ctx)
	if err != nil {
		return nil, fmt.Errorf("live.RunOnce: clock: %w", err)
	}
	result.MarketOpen = clock.IsOpen
	if !clock.IsOpen {
		slog.Info("live: market closed, skipping cycle", "next_open", clock.NextOpen)
		return result, nil
	}

	account, err := le.broker.Account(ctx)
	if err != nil {
		return nil, fmt.Errorf("live.RunOnce: account: %w", err)
	}
	result.BuyingPower = account.BuyingPower
	result.Equity = account.Equity

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -le.cfg.LookbackDays)
	series, err := le.bars.FetchBars(ctx, le.cfg.Symbols, start, end)
	if err != nil {
		return nil, fmt.Errorf("live.RunOnce: fetch bars: %w", err)
	}
	history := domain.NewHistory(series)
	if history.Len() == 0 {
		slog.Warn("live: no bars returned, skipping cycle")
		return result, nil
	}

	// The strategy sees the broker's cash as a throwaway ledger; the
	// account remains the single source of truth.
	ledger := domain.NewLedger(account.BuyingPower)
	proposals := le.propose(ledger, history, history.Len()-1, le.cfg.Limits)
	result.Proposals = len(proposals)

	for _, p := range proposals {
		orderID, err := le.broker.SubmitBracket(ctx, domain.BracketTicket{
			Symbol:      p.Symbol,
			Quantity:    p.Quantity,
			Side:        domain.SideBuy,
			TimeInForce: le.cfg.TimeInForce,
			TakeProfit:  p.TakeProfit,
			StopTrigger: p.StopTrigger,
			StopLimit:   p.StopLimit,
		})
		if err != nil {
			slog.Warn("live: bracket submission failed",
				"symbol", p.Symbol, "qty", p.Quantity, "err", err)
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		slog.Info("live: bracket submitted",
			"symbol", p.Symbol,
			"qty", p.Quantity,
			"entry", fmt.Sprintf("%.2f", p.Price),
			"take_profit", fmt.Sprintf("%.2f", p.TakeProfit),
			"stop_trigger", fmt.Sprintf("%.2f", p.StopTrigger),
			"order_id", orderID,
		)
		result.Submitted++
		result.OrderIDs = append(result.OrderIDs, orderID)
	}

	return result, nil
}
