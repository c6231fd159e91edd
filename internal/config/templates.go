package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Swing Trader Backtest Configuration

[simulation]
# Starting capital for each backtest run
initial_capital = 100000.0
# Fraction of available capital risked per trade (0.02 = 2%)
risk_per_trade = 0.02
# Maximum number of concurrent open positions
max_positions = 5
# Trailing stop distance below the highest price seen (0.04 = 4%)
trailing_stop_pct = 0.04
# Force an exit after this many calendar days in a trade
max_holding_days = 10
# Smallest position value worth opening
min_notional = 10000.0
# Cap on a single position as a fraction of available capital (0.20 = 20%)
max_notional_fraction = 0.20

[signals]
rsi_period = 14
rsi_oversold = 30.0
rsi_overbought = 70.0
ema_short = 9
ema_long = 21
sma_trend = 50
volume_ma_period = 20
volume_spike_ratio = 1.5
atr_period = 14
atr_stop_multiple = 2.0
atr_target_multiple = 3.0
# Minimum fraction of agreeing indicators required to take an entry
min_strength = 0.5

[data]
# SQLite database holding daily candles
# db_path = "~/.config/swingtrader/candles.db"
# History loaded before the simulation start for indicator warmup
lookback_days = 200

[logging]
level = "info"
console = true
file = true
`

// writeTemplate creates a commented config.toml carrying the defaults so a
// first run leaves something editable behind.
func writeTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}
