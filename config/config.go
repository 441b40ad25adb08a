package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full bracketbot configuration.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Strategy   StrategyConfig   `yaml:"strategy"`
	Data       DataConfig       `yaml:"data"`
	Alpaca     AlpacaConfig     `yaml:"alpaca"`
	Live       LiveConfig       `yaml:"live"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
}

// SimulationConfig controls the replay run.
type SimulationConfig struct {
	Symbols        []string `yaml:"symbols"`
	StartingPower  float64  `yaml:"starting_power"`
	TakeProfitMult float64  `yaml:"take_profit_mult"` // exit trigger = entry * mult, > 1
	StopLossMult   float64  `yaml:"stop_loss_mult"`   // exit trigger = entry * mult, < 1
}

// StrategyConfig selects and tunes the proposal strategy.
type StrategyConfig struct {
	Name        string `yaml:"name"` // unconditional | trend | smoothed
	TrendWindow int    `yaml:"trend_window"`
	MAWindow    int    `yaml:"ma_window"`
	MALookback  int    `yaml:"ma_lookback"`
}

// DataConfig controls where bars come from.
type DataConfig struct {
	Source       string `yaml:"source"` // alpaca | parquet
	Dir          string `yaml:"dir"`    // parquet cache directory
	LookbackDays int    `yaml:"lookback_days"`
	Feed         string `yaml:"feed"` // iex | sip
}

// AlpacaConfig holds the broker endpoints. API keys come only from the
// environment (APCA_API_KEY_ID / APCA_API_SECRET_KEY), never from YAML.
type AlpacaConfig struct {
	BaseURL string `yaml:"base_url"`
	DataURL string `yaml:"data_url"`
}

// LiveConfig controls the polling loop.
type LiveConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	TimeInForce     string `yaml:"time_in_force"` // day | gtc | ioc
}

// StorageConfig controls where run results persist.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // SQLite file path, or ":memory:"
}

// LogConfig controls the logging format and level.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML file and the .env file if present. Environment
// values override YAML for the keys they cover.
func Load(path string) (*Config, error) {
	// Load .env if present (missing file is not an error)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LiveInterval returns the polling interval as a time.Duration.
func (c *Config) LiveInterval() time.Duration {
	return time.Duration(c.Live.IntervalSeconds) * time.Second
}

// AlpacaKey returns the API key from the environment.
func (c *Config) AlpacaKey() string {
	return os.Getenv("APCA_API_KEY_ID")
}

// AlpacaSecret returns the API secret from the environment.
func (c *Config) AlpacaSecret() string {
	return os.Getenv("APCA_API_SECRET_KEY")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("BRACKETBOT_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("BRACKETBOT_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

func setDefaults(cfg *Config) {
	if len(cfg.Simulation.Symbols) == 0 {
		cfg.Simulation.Symbols = []string{"AAPL"}
	}
	if cfg.Simulation.StartingPower <= 0 {
		cfg.Simulation.StartingPower = 10000
	}
	if cfg.Simulation.TakeProfitMult <= 0 {
		cfg.Simulation.TakeProfitMult = 1.04
	}
	if cfg.Simulation.StopLossMult <= 0 {
		cfg.Simulation.StopLossMult = 0.98
	}
	if cfg.Strategy.Name == "" {
		cfg.Strategy.Name = "smoothed"
	}
	if cfg.Strategy.TrendWindow <= 0 {
		cfg.Strategy.TrendWindow = 3
	}
	if cfg.Strategy.MAWindow <= 0 {
		cfg.Strategy.MAWindow = 5
	}
	if cfg.Strategy.MALookback <= 0 {
		cfg.Strategy.MALookback = 3
	}
	if cfg.Data.Source == "" {
		cfg.Data.Source = "alpaca"
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "data"
	}
	if cfg.Data.LookbackDays <= 0 {
		cfg.Data.LookbackDays = 365
	}
	if cfg.Data.Feed == "" {
		cfg.Data.Feed = "iex"
	}
	if cfg.Alpaca.BaseURL == "" {
		cfg.Alpaca.BaseURL = "https://paper-api.alpaca.markets"
	}
	if cfg.Alpaca.DataURL == "" {
		cfg.Alpaca.DataURL = "https://data.alpaca.markets"
	}
	if cfg.Live.IntervalSeconds <= 0 {
		cfg.Live.IntervalSeconds = 300
	}
	if cfg.Live.TimeInForce == "" {
		cfg.Live.TimeInForce = "gtc"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "bracketbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// validate rejects combinations the engines cannot run with.
func validate(cfg *Config) error {
	if cfg.Simulation.TakeProfitMult <= 1 {
		return fmt.Errorf("config.Load: take_profit_mult must be > 1, got %v", cfg.Simulation.TakeProfitMult)
	}
	if cfg.Simulation.StopLossMult >= 1 {
		return fmt.Errorf("config.Load: stop_loss_mult must be < 1, got %v", cfg.Simulation.StopLossMult)
	}
	switch cfg.Data.Source {
	case "alpaca", "parquet":
	default:
		return fmt.Errorf("config.Load: unknown data source %q", cfg.Data.Source)
	}
	return nil
}
