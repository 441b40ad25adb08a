package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/icarofreire/bracketbot/config"
	"github.com/icarofreire/bracketbot/internal/adapters/alpaca"
	"github.com/icarofreire/bracketbot/internal/adapters/barfile"
	"github.com/icarofreire/bracketbot/internal/adapters/notify"
	"github.com/icarofreire/bracketbot/internal/adapters/storage"
	"github.com/icarofreire/bracketbot/internal/application/engine/backtest"
	"github.com/icarofreire/bracketbot/internal/domain"
	"github.com/icarofreire/bracketbot/internal/ports"
	"github.com/icarofreire/bracketbot/internal/strategy"
)

// runBacktest fetches the bar window, replays it through the engine,
// prints the report and archives the run.
func runBacktest(ctx context.Context, cfg *config.Config, propose strategy.ProposeFunc, notifier *notify.Console) {
	startedAt := time.Now().UTC()
	end := startedAt
	start := end.AddDate(0, 0, -cfg.Data.LookbackDays)

	provider := newBarProvider(cfg)
	series, err := provider.FetchBars(ctx, cfg.Simulation.Symbols, start, end)
	if err != nil {
		slog.Error("failed to fetch bars", "err", err, "source", cfg.Data.Source)
		os.Exit(1)
	}
	if len(series) == 0 {
		slog.Error("no bar data for any configured symbol",
			"symbols", cfg.Simulation.Symbols, "source", cfg.Data.Source)
		os.Exit(1)
	}

	// Refresh the local cache so later parquet-sourced runs replay the
	// same window offline.
	if cfg.Data.Source == "alpaca" {
		cacheBars(cfg.Data.Dir, series)
	}

	history := domain.NewHistory(series)
	slog.Info("bars loaded",
		"symbols", history.Symbols(),
		"steps", history.Len(),
		"from", start.Format("2006-01-02"),
		"to", end.Format("2006-01-02"),
	)

	eng := backtest.New(history, propose, backtest.Config{
		StartingPower: cfg.Simulation.StartingPower,
		Limits: strategy.Limits{
			TakeProfitMult: cfg.Simulation.TakeProfitMult,
			StopLossMult:   cfg.Simulation.StopLossMult,
		},
	})

	res, err := eng.Run(ctx)
	if err != nil {
		slog.Warn("run interrupted, reporting partial result", "err", err)
	}

	notifier.PrintBacktest(res, cfg.Strategy.Name, history.Symbols())
	archiveRun(ctx, cfg, res, history.Symbols(), startedAt)
}

// newBarProvider picks the configured bar source. The parquet store
// serves offline replays from previously cached fetches.
func newBarProvider(cfg *config.Config) ports.BarProvider {
	if cfg.Data.Source == "parquet" {
		return barfile.NewStore(cfg.Data.Dir)
	}
	return alpaca.NewClient(alpaca.ClientConfig{
		APIKey:    cfg.AlpacaKey(),
		APISecret: cfg.AlpacaSecret(),
		BaseURL:   cfg.Alpaca.BaseURL,
		DataURL:   cfg.Alpaca.DataURL,
		Feed:      cfg.Data.Feed,
	})
}

func cacheBars(dir string, series map[string][]domain.Bar) {
	store := barfile.NewStore(dir)
	for symbol, bars := range series {
		if err := store.WriteBars(symbol, bars); err != nil {
			slog.Warn("failed to cache bars", "err", err, "symbol", symbol)
		}
	}
}

func archiveRun(ctx context.Context, cfg *config.Config, res *backtest.Result, symbols []string, startedAt time.Time) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		slog.Warn("run archive unavailable, skipping save", "err", err, "dsn", cfg.Storage.DSN)
		return
	}
	defer store.Close()

	id, err := store.SaveRun(ctx, ports.RunRecord{
		StartedAt:     startedAt,
		Strategy:      cfg.Strategy.Name,
		Symbols:       symbols,
		StartingPower: res.StartingPower,
		FinalEquity:   res.FinalEquity(),
		Steps:         res.Steps,
		Fills:         res.Fills,
		EquityCurve:   res.EquityCurve,
	})
	if err != nil {
		slog.Warn("failed to archive run", "err", err)
		return
	}
	slog.Info("run archived", "id", id, "dsn", cfg.Storage.DSN)
}
