package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "simulation:\n  symbols: [AAPL, MSFT]\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Simulation.Symbols)
	assert.Equal(t, 10000.0, cfg.Simulation.StartingPower)
	assert.Equal(t, 1.04, cfg.Simulation.TakeProfitMult)
	assert.Equal(t, 0.98, cfg.Simulation.StopLossMult)
	assert.Equal(t, "smoothed", cfg.Strategy.Name)
	assert.Equal(t, "alpaca", cfg.Data.Source)
	assert.Equal(t, "iex", cfg.Data.Feed)
	assert.Equal(t, "https://paper-api.alpaca.markets", cfg.Alpaca.BaseURL)
	assert.Equal(t, "bracketbot.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5*time.Minute, cfg.LiveInterval())
}

func TestLoad_ExplicitValues(t *testing.T) {
	path := writeConfig(t, `
simulation:
  symbols: [TSLA]
  starting_power: 2500
  take_profit_mult: 1.1
  stop_loss_mult: 0.9
strategy:
  name: trend
  trend_window: 5
data:
  source: parquet
  dir: /tmp/bars
live:
  interval_seconds: 60
  time_in_force: day
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2500.0, cfg.Simulation.StartingPower)
	assert.Equal(t, 1.1, cfg.Simulation.TakeProfitMult)
	assert.Equal(t, "trend", cfg.Strategy.Name)
	assert.Equal(t, 5, cfg.Strategy.TrendWindow)
	assert.Equal(t, "parquet", cfg.Data.Source)
	assert.Equal(t, "/tmp/bars", cfg.Data.Dir)
	assert.Equal(t, time.Minute, cfg.LiveInterval())
	assert.Equal(t, "day", cfg.Live.TimeInForce)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("BRACKETBOT_DSN", "/tmp/override.db")

	path := writeConfig(t, "log:\n  level: debug\nstorage:\n  dsn: original.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/override.db", cfg.Storage.DSN)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidMultipliers(t *testing.T) {
	path := writeConfig(t, "simulation:\n  take_profit_mult: 0.9\n  stop_loss_mult: 0.98\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "take_profit_mult")

	path = writeConfig(t, "simulation:\n  stop_loss_mult: 1.5\n")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop_loss_mult")
}

func TestLoad_UnknownDataSource(t *testing.T) {
	path := writeConfig(t, "data:\n  source: csv\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown data source")
}

func TestAlpacaCredentialsFromEnv(t *testing.T) {
	t.Setenv("APCA_API_KEY_ID", "key-id")
	t.Setenv("APCA_API_SECRET_KEY", "secret")

	cfg := &Config{}
	assert.Equal(t, "key-id", cfg.AlpacaKey())
	assert.Equal(t, "secret", cfg.AlpacaSecret())
}
