package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/icarofreire/bracketbot/config"
	"github.com/icarofreire/bracketbot/internal/adapters/alpaca"
	"github.com/icarofreire/bracketbot/internal/adapters/notify"
	"github.com/icarofreire/bracketbot/internal/application/engine/live"
	"github.com/icarofreire/bracketbot/internal/strategy"
)

// runPaper drives the fixed-interval polling loop against the paper
// broker. Ctrl+C or a STOP file in the working directory shuts it down.
func runPaper(ctx context.Context, cfg *config.Config, propose strategy.ProposeFunc, notifier *notify.Console) {
	if cfg.AlpacaKey() == "" || cfg.AlpacaSecret() == "" {
		slog.Error("missing broker credentials; set APCA_API_KEY_ID and APCA_API_SECRET_KEY")
		os.Exit(1)
	}

	client := alpaca.NewClient(alpaca.ClientConfig{
		APIKey:    cfg.AlpacaKey(),
		APISecret: cfg.AlpacaSecret(),
		BaseURL:   cfg.Alpaca.BaseURL,
		DataURL:   cfg.Alpaca.DataURL,
		Feed:      cfg.Data.Feed,
	})

	eng := live.New(client, client, propose, live.Config{
		Symbols: cfg.Simulation.Symbols,
		Limits: strategy.Limits{
			TakeProfitMult: cfg.Simulation.TakeProfitMult,
			StopLossMult:   cfg.Simulation.StopLossMult,
		},
		TimeInForce:  cfg.Live.TimeInForce,
		LookbackDays: cfg.Data.LookbackDays,
	})

	slog.Info("=== PAPER TRADING MODE ===",
		"interval", cfg.LiveInterval(),
		"symbols", cfg.Simulation.Symbols,
		"endpoint", cfg.Alpaca.BaseURL,
	)
	slog.Info("paper loop started — press Ctrl+C or create a STOP file to exit")

	const stopFile = "STOP"
	ticker := time.NewTicker(cfg.LiveInterval())
	defer ticker.Stop()

	runPaperCycle(ctx, eng, notifier)

	for {
		select {
		case <-ctx.Done():
			slog.Info("paper loop stopped (signal)")
			return
		case <-ticker.C:
			if _, err := os.Stat(stopFile); err == nil {
				slog.Info("STOP file detected — shutting down paper loop")
				os.Remove(stopFile)
				return
			}
			runPaperCycle(ctx, eng, notifier)
		}
	}
}

func runPaperCycle(ctx context.Context, eng *live.Engine, notifier *notify.Console) {
	result, err := eng.RunOnce(ctx)
	if err != nil {
		slog.Error("paper cycle failed", "err", err)
		return
	}
	notifier.PrintLiveCycle(result)
}
