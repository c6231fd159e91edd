package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"swingtrader/internal/store"
)

func newDataCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Price history management",
		Long:  "Import and inspect the daily candle history used by backtests.",
	}

	cmd.AddCommand(newDataImportCmd(app))
	cmd.AddCommand(newDataSymbolsCmd(app))

	return cmd
}

func newDataImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import daily candles from a CSV file",
		Long: `Import daily candles from a CSV file with Date,Open,High,Low,Close,Volume
columns. A Symbol column is optional; without one, --symbol is required.`,
		Example: `  swingtrader data import candles.csv
  swingtrader data import RELIANCE.csv --symbol RELIANCE`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Price database unavailable")
				return fmt.Errorf("store not configured")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			symbol, _ := cmd.Flags().GetString("symbol")
			symbol = strings.ToUpper(symbol)

			count, err := store.ImportCSV(ctx, app.Store, args[0], symbol)
			if err != nil {
				output.Error("Import failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"imported": count, "file": args[0]})
			}
			output.Success("Imported %d candles from %s", count, args[0])
			return nil
		},
	}

	cmd.Flags().StringP("symbol", "s", "", "symbol for rows without a Symbol column")

	return cmd
}

func newDataSymbolsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "symbols",
		Short: "List symbols with stored history",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Price database unavailable")
				return fmt.Errorf("store not configured")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			symbols, err := app.Store.Symbols(ctx)
			if err != nil {
				output.Error("Failed to list symbols: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"symbols": symbols})
			}
			if len(symbols) == 0 {
				output.Dim("No symbols stored. Use 'swingtrader data import' first.")
				return nil
			}
			for _, s := range symbols {
				output.Println(s)
			}
			return nil
		},
	}
}
