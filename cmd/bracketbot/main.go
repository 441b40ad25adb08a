package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/icarofreire/bracketbot/config"
	"github.com/icarofreire/bracketbot/internal/adapters/notify"
	"github.com/icarofreire/bracketbot/internal/adapters/storage"
	"github.com/icarofreire/bracketbot/internal/strategy"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	paper := flag.Bool("paper", false, "poll the broker and submit paper bracket orders")
	report := flag.Bool("report", false, "list archived backtest runs and exit")
	reportLimit := flag.Int("limit", 20, "max runs shown with -report")
	verbose := flag.Bool("verbose", false, "set log level to debug and print the fill log")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("bracketbot starting",
		"config", *configPath,
		"strategy", cfg.Strategy.Name,
		"symbols", cfg.Simulation.Symbols,
		"paper", *paper,
		"report", *report,
	)

	notifier := notify.NewConsole(*verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *report {
		runReport(ctx, cfg, notifier, *reportLimit)
		return
	}

	propose, err := strategy.ByName(cfg.Strategy.Name,
		cfg.Strategy.TrendWindow, cfg.Strategy.MAWindow, cfg.Strategy.MALookback)
	if err != nil {
		slog.Error("invalid strategy", "err", err)
		os.Exit(1)
	}

	if *paper {
		runPaper(ctx, cfg, propose, notifier)
		return
	}

	runBacktest(ctx, cfg, propose, notifier)
}

func runReport(ctx context.Context, cfg *config.Config, notifier *notify.Console, limit int) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open run archive", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	runs, err := store.GetRuns(ctx, limit)
	if err != nil {
		slog.Error("failed to read run archive", "err", err)
		os.Exit(1)
	}
	notifier.PrintRuns(runs)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
