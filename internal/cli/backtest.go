package cli

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"swingtrader/internal/export"
	"swingtrader/internal/metrics"
	"swingtrader/internal/signal"
	"swingtrader/internal/simulator"
	"swingtrader/internal/store"
)

const dateLayout = "2006-01-02"

func newBacktestCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run a backtest over stored price history",
	}

	cmd.AddCommand(newBacktestRunCmd(app))

	return cmd
}

func newBacktestRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate the strategy over a date range",
		Long: `Simulate the swing strategy day by day over [--from, --to]. Symbols
default to everything in the price database. Results are persisted and can
additionally be exported to CSV with --export.`,
		Example: `  swingtrader backtest run --from 2025-01-01 --to 2025-06-30
  swingtrader backtest run --from 2025-01-01 --to 2025-06-30 --symbols RELIANCE,INFY
  swingtrader backtest run --from 2025-01-01 --to 2025-06-30 --export ./results`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Price database unavailable")
				return fmt.Errorf("store not configured")
			}

			from, to, err := parseRange(cmd)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			ctx := cmd.Context()

			symbols, err := resolveSymbols(ctx, cmd, app)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			// Load extra history before the start for indicator warmup.
			loadFrom := from.AddDate(0, 0, -app.Config.Data.LookbackDays)
			history, err := store.LoadHistory(ctx, app.Store, symbols, loadFrom, to)
			if err != nil {
				output.Error("Loading history: %v", err)
				return err
			}

			workers, _ := cmd.Flags().GetInt("workers")
			scorer := signal.NewThresholdScorer(app.Config.Signals, history)
			sim := simulator.New(app.Config.Simulation, history, scorer, app.Logger,
				simulator.WithWorkers(workers))

			result, err := sim.Run(ctx, from, to)
			if err != nil {
				output.Error("Backtest failed: %v", err)
				return err
			}

			report := metrics.Calculate(result.Trades, result.EquityCurve, result.InitialCapital)

			runID, err := app.Store.SaveRun(ctx, &store.RunRecord{
				CreatedAt:      time.Now(),
				StartDate:      result.StartDate,
				EndDate:        result.EndDate,
				Symbols:        history.Symbols(),
				InitialCapital: result.InitialCapital,
				FinalCapital:   result.FinalCapital,
				TotalTrades:    report.TotalTrades,
				WinRate:        report.WinRate,
				MaxDrawdownPct: report.MaxDrawdownPct,
				SharpeRatio:    report.SharpeRatio,
				Trades:         result.Trades,
			})
			if err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to persist run")
			}

			if dir, _ := cmd.Flags().GetString("export"); dir != "" {
				if err := exportResults(dir, result); err != nil {
					output.Error("Export failed: %v", err)
					return err
				}
				output.Dim("Exported trades and equity curve to %s", dir)
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"run_id":  runID,
					"start":   result.StartDate.Format(dateLayout),
					"end":     result.EndDate.Format(dateLayout),
					"symbols": history.Symbols(),
					"report":  report,
					"trades":  result.Trades,
				})
			}

			displayReport(output, result, report)
			return nil
		},
	}

	cmd.Flags().String("from", "", "start date (YYYY-MM-DD), required")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD), required")
	cmd.Flags().StringP("symbols", "s", "", "comma-separated symbols (default: all stored)")
	cmd.Flags().String("export", "", "directory to write trades.csv and equity.csv")
	cmd.Flags().Int("workers", 4, "parallel signal-scan workers")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	return cmd
}

func parseRange(cmd *cobra.Command) (time.Time, time.Time, error) {
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")

	from, err := time.Parse(dateLayout, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date %q", fromStr)
	}
	to, err := time.Parse(dateLayout, toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date %q", toStr)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", toStr, fromStr)
	}
	return from, to, nil
}

func resolveSymbols(ctx context.Context, cmd *cobra.Command, app *App) ([]string, error) {
	if list, _ := cmd.Flags().GetString("symbols"); list != "" {
		parts := strings.Split(list, ",")
		symbols := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
				symbols = append(symbols, s)
			}
		}
		return symbols, nil
	}

	symbols, err := app.Store.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing symbols: %w", err)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no price history stored; run 'swingtrader data import' first")
	}
	return symbols, nil
}

func exportResults(dir string, result *simulator.Result) error {
	stamp := export.RunStamp(time.Now())
	if err := export.Trades(filepath.Join(dir, "trades-"+stamp+".csv"), result.Trades); err != nil {
		return err
	}
	return export.EquityCurve(filepath.Join(dir, "equity-"+stamp+".csv"), result.EquityCurve)
}

func displayReport(output *Output, result *simulator.Result, report *metrics.Report) {
	output.Bold("Backtest %s to %s (%d trading days)",
		result.StartDate.Format(dateLayout), result.EndDate.Format(dateLayout), result.TradingDays)
	output.Println()

	output.Printf("  Initial Capital:  %.2f\n", result.InitialCapital)
	output.Printf("  Final Capital:    %.2f\n", report.FinalCapital)
	output.Printf("  Total Return:     %s (%s)\n", output.PnL(report.TotalPnL), output.Percent(report.TotalReturnPct))
	output.Println()

	output.Bold("Trades")
	output.Printf("  Total:            %d (%d wins, %d losses)\n",
		report.TotalTrades, report.WinningTrades, report.LosingTrades)
	output.Printf("  Win Rate:         %.1f%%\n", report.WinRate)
	output.Printf("  Profit Factor:    %s\n", formatProfitFactor(report.ProfitFactor))
	output.Printf("  Expectancy:       %.2f per trade\n", report.Expectancy)
	output.Printf("  Avg Win / Loss:   %.2f / %.2f\n", report.AverageWin, report.AverageLoss)
	output.Printf("  Largest Win/Loss: %s / %s\n", output.PnL(report.LargestWin), output.PnL(report.LargestLoss))
	output.Printf("  Streaks:          %d wins, %d losses\n", report.MaxWinStreak, report.MaxLossStreak)
	output.Printf("  Avg Days Held:    %.1f\n", report.AvgDaysHeld)
	output.Println()

	output.Bold("Risk")
	output.Printf("  Max Drawdown:     %.2f (%.2f%%)\n", report.MaxDrawdown, report.MaxDrawdownPct)
	output.Printf("  Sharpe Ratio:     %.2f\n", report.SharpeRatio)
	output.Printf("  Sortino Ratio:    %.2f\n", report.SortinoRatio)
	output.Printf("  Calmar Ratio:     %.2f\n", report.CalmarRatio)
	output.Println()

	if len(report.ExitReasons) > 0 {
		output.Bold("Exit Reasons")
		for _, reason := range []string{"STOP_LOSS", "TAKE_PROFIT", "TRAILING_STOP", "MAX_HOLDING_PERIOD", "SIMULATION_END"} {
			if n, ok := report.ExitReasons[reason]; ok {
				output.Printf("  %-19s %d\n", reason+":", n)
			}
		}
	}
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf (no losing trades)"
	}
	return fmt.Sprintf("%.2f", pf)
}
