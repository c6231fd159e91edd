// Package cli provides the command-line interface for the backtesting
// application.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"swingtrader/internal/config"
	"swingtrader/internal/logging"
	"swingtrader/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-31"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dataStore, err := store.NewSQLiteStore(cfg.Data.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to open price database, data commands unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Data.DBPath).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "swingtrader",
		Short: "Swing trade backtesting CLI",
		Long: `Swingtrader simulates a swing-trading strategy against historical daily
candles: ATR-based stops and targets, a trailing stop ratchet, risk-based
position sizing and a capped portfolio, with full performance metrics.

Use 'swingtrader help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/swingtrader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newDataCmd(app))
	rootCmd.AddCommand(newBacktestCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Swingtrader v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	s := cfg.Simulation
	output.Bold("Simulation")
	output.Printf("  Initial Capital:   %.2f\n", s.InitialCapital)
	output.Printf("  Risk Per Trade:    %.2f%%\n", s.RiskPerTrade*100)
	output.Printf("  Max Positions:     %d\n", s.MaxPositions)
	output.Printf("  Trailing Stop:     %.2f%%\n", s.TrailingStopPct*100)
	output.Printf("  Max Holding Days:  %d\n", s.MaxHoldingDays)
	output.Printf("  Min Notional:      %.2f\n", s.MinNotional)
	output.Printf("  Max Notional Frac: %.2f\n", s.MaxNotionalFraction)
	output.Println()

	sig := cfg.Signals
	output.Bold("Signals")
	output.Printf("  RSI:               %d period, oversold %.0f\n", sig.RSIPeriod, sig.RSIOversold)
	output.Printf("  EMA:               %d/%d\n", sig.EMAShort, sig.EMALong)
	output.Printf("  SMA Trend:         %d\n", sig.SMATrend)
	output.Printf("  Volume Spike:      %.2fx over %d-day MA\n", sig.VolumeSpikeRatio, sig.VolumeMAPeriod)
	output.Printf("  ATR:               %d period, stop %.1fx, target %.1fx\n", sig.ATRPeriod, sig.ATRStopMultiple, sig.ATRTargetMultiple)
	output.Printf("  Min Strength:      %.2f\n", sig.MinStrength)
	output.Println()

	output.Bold("Data")
	output.Printf("  DB Path:           %s\n", cfg.Data.DBPath)
	output.Printf("  Lookback Days:     %d\n", cfg.Data.LookbackDays)
}
