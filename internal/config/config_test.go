package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capital", func(c *Config) { c.Simulation.InitialCapital = 0 }},
		{"negative capital", func(c *Config) { c.Simulation.InitialCapital = -100 }},
		{"zero risk", func(c *Config) { c.Simulation.RiskPerTrade = 0 }},
		{"excessive risk", func(c *Config) { c.Simulation.RiskPerTrade = 0.10 }},
		{"zero positions", func(c *Config) { c.Simulation.MaxPositions = 0 }},
		{"zero trailing", func(c *Config) { c.Simulation.TrailingStopPct = 0 }},
		{"trailing of one", func(c *Config) { c.Simulation.TrailingStopPct = 1 }},
		{"zero holding days", func(c *Config) { c.Simulation.MaxHoldingDays = 0 }},
		{"negative min notional", func(c *Config) { c.Simulation.MinNotional = -1 }},
		{"zero notional fraction", func(c *Config) { c.Simulation.MaxNotionalFraction = 0 }},
		{"notional fraction above one", func(c *Config) { c.Simulation.MaxNotionalFraction = 1.5 }},
		{"strength above one", func(c *Config) { c.Signals.MinStrength = 1.5 }},
		{"zero lookback", func(c *Config) { c.Data.LookbackDays = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_CreatesTemplateWhenMissing(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	// Defaults apply and the template now exists on disk.
	assert.Equal(t, 100000.0, cfg.Simulation.InitialCapital)
	_, statErr := os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, statErr)
}

func TestLoad_ReadsValuesFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[simulation]
initial_capital = 250000.0
risk_per_trade = 0.01
max_positions = 3

[data]
lookback_days = 100
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 250000.0, cfg.Simulation.InitialCapital)
	assert.Equal(t, 0.01, cfg.Simulation.RiskPerTrade)
	assert.Equal(t, 3, cfg.Simulation.MaxPositions)
	assert.Equal(t, 100, cfg.Data.LookbackDays)
	// Unset keys keep their defaults.
	assert.Equal(t, 0.04, cfg.Simulation.TrailingStopPct)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SWINGTRADER_CAPITAL", "500000")
	t.Setenv("SWINGTRADER_MAX_POSITIONS", "8")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 500000.0, cfg.Simulation.InitialCapital)
	assert.Equal(t, 8, cfg.Simulation.MaxPositions)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	dir := t.TempDir()
	content := `
[simulation]
risk_per_trade = 0.50
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	_, err := Load(dir)
	require.Error(t, err)
}
