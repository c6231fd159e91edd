// Package config provides configuration management for the backtesting application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"swingtrader/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Signals    SignalConfig     `mapstructure:"signals"`
	Data       DataConfig       `mapstructure:"data"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SimulationConfig holds the trade-lifecycle simulation parameters. Every
// recognized option is enumerated here; there is no pass-through map.
type SimulationConfig struct {
	InitialCapital float64 `mapstructure:"initial_capital"`
	// RiskPerTrade is the fraction of available capital allowed to be lost
	// at the stop-loss on a single trade, e.g. 0.02 for 2%.
	RiskPerTrade float64 `mapstructure:"risk_per_trade"`
	MaxPositions int     `mapstructure:"max_positions"`
	// TrailingStopPct is the ratchet distance below the highest price seen,
	// e.g. 0.04 for 4%.
	TrailingStopPct float64 `mapstructure:"trailing_stop_pct"`
	MaxHoldingDays  int     `mapstructure:"max_holding_days"`
	// MinNotional is the smallest position value worth opening.
	MinNotional float64 `mapstructure:"min_notional"`
	// MaxNotionalFraction caps a single position as a fraction of available
	// capital, e.g. 0.20 for 20%.
	MaxNotionalFraction float64 `mapstructure:"max_notional_fraction"`
}

// SignalConfig holds indicator thresholds for the reference signal provider.
type SignalConfig struct {
	RSIPeriod         int     `mapstructure:"rsi_period"`
	RSIOversold       float64 `mapstructure:"rsi_oversold"`
	RSIOverbought     float64 `mapstructure:"rsi_overbought"`
	EMAShort          int     `mapstructure:"ema_short"`
	EMALong           int     `mapstructure:"ema_long"`
	SMATrend          int     `mapstructure:"sma_trend"`
	VolumeMAPeriod    int     `mapstructure:"volume_ma_period"`
	VolumeSpikeRatio  float64 `mapstructure:"volume_spike_ratio"`
	ATRPeriod         int     `mapstructure:"atr_period"`
	ATRStopMultiple   float64 `mapstructure:"atr_stop_multiple"`
	ATRTargetMultiple float64 `mapstructure:"atr_target_multiple"`
	MinStrength       float64 `mapstructure:"min_strength"`
}

// DataConfig holds price history configuration.
type DataConfig struct {
	DBPath string `mapstructure:"db_path"`
	// LookbackDays is how much history before the simulation start is
	// loaded for indicator warmup.
	LookbackDays int `mapstructure:"lookback_days"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
	Path    string `mapstructure:"path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/swingtrader"
	}
	return filepath.Join(home, ".config", "swingtrader")
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			InitialCapital:      100000,
			RiskPerTrade:        0.02,
			MaxPositions:        5,
			TrailingStopPct:     0.04,
			MaxHoldingDays:      10,
			MinNotional:         10000,
			MaxNotionalFraction: 0.20,
		},
		Signals: SignalConfig{
			RSIPeriod:         14,
			RSIOversold:       30,
			RSIOverbought:     70,
			EMAShort:          9,
			EMALong:           21,
			SMATrend:          50,
			VolumeMAPeriod:    20,
			VolumeSpikeRatio:  1.5,
			ATRPeriod:         14,
			ATRStopMultiple:   2.0,
			ATRTargetMultiple: 3.0,
			MinStrength:       0.5,
		},
		Data: DataConfig{
			DBPath:       filepath.Join(DefaultConfigDir(), "candles.db"),
			LookbackDays: 200,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			File:    true,
			Path:    logging.DefaultLogConfig().FilePath,
		},
	}
}

// Load loads configuration from the specified directory. If configDir is
// empty, the default config directory is used. A missing config file is
// replaced with a template carrying the defaults.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := writeTemplate(configDir); err != nil {
				return nil, fmt.Errorf("creating config template: %w", err)
			}
		} else {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("simulation.initial_capital", cfg.Simulation.InitialCapital)
	v.SetDefault("simulation.risk_per_trade", cfg.Simulation.RiskPerTrade)
	v.SetDefault("simulation.max_positions", cfg.Simulation.MaxPositions)
	v.SetDefault("simulation.trailing_stop_pct", cfg.Simulation.TrailingStopPct)
	v.SetDefault("simulation.max_holding_days", cfg.Simulation.MaxHoldingDays)
	v.SetDefault("simulation.min_notional", cfg.Simulation.MinNotional)
	v.SetDefault("simulation.max_notional_fraction", cfg.Simulation.MaxNotionalFraction)
	v.SetDefault("data.db_path", cfg.Data.DBPath)
	v.SetDefault("data.lookback_days", cfg.Data.LookbackDays)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.console", cfg.Logging.Console)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.path", cfg.Logging.Path)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SWINGTRADER_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Simulation.InitialCapital = f
		}
	}
	if v := os.Getenv("SWINGTRADER_RISK_PER_TRADE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Simulation.RiskPerTrade = f
		}
	}
	if v := os.Getenv("SWINGTRADER_MAX_POSITIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.MaxPositions = n
		}
	}
	if v := os.Getenv("SWINGTRADER_DB_PATH"); v != "" {
		cfg.Data.DBPath = v
	}
}

// Validate validates the configuration. Errors here are fatal at startup,
// never mid-run.
func (c *Config) Validate() error {
	s := c.Simulation
	if s.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive, got %.2f", s.InitialCapital)
	}
	if s.RiskPerTrade <= 0 || s.RiskPerTrade > 0.05 {
		return fmt.Errorf("risk_per_trade must be in (0, 0.05], got %.4f", s.RiskPerTrade)
	}
	if s.MaxPositions <= 0 {
		return fmt.Errorf("max_positions must be positive, got %d", s.MaxPositions)
	}
	if s.TrailingStopPct <= 0 || s.TrailingStopPct >= 1 {
		return fmt.Errorf("trailing_stop_pct must be in (0, 1), got %.4f", s.TrailingStopPct)
	}
	if s.MaxHoldingDays <= 0 {
		return fmt.Errorf("max_holding_days must be positive, got %d", s.MaxHoldingDays)
	}
	if s.MinNotional < 0 {
		return fmt.Errorf("min_notional must be non-negative, got %.2f", s.MinNotional)
	}
	if s.MaxNotionalFraction <= 0 || s.MaxNotionalFraction > 1 {
		return fmt.Errorf("max_notional_fraction must be in (0, 1], got %.4f", s.MaxNotionalFraction)
	}
	if c.Signals.MinStrength < 0 || c.Signals.MinStrength > 1 {
		return fmt.Errorf("min_strength must be between 0 and 1, got %.2f", c.Signals.MinStrength)
	}
	if c.Data.LookbackDays <= 0 {
		return fmt.Errorf("lookback_days must be positive, got %d", c.Data.LookbackDays)
	}
	return nil
}
