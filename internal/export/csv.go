// Package export writes backtest results to CSV files.
package export

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"swingtrader/internal/models"
)

const dateLayout = "2006-01-02"

// tradeRow is the CSV layout for the closed-trade history.
type tradeRow struct {
	Symbol     string  `csv:"Symbol"`
	EntryDate  string  `csv:"EntryDate"`
	ExitDate   string  `csv:"ExitDate"`
	Quantity   int     `csv:"Quantity"`
	EntryPrice float64 `csv:"EntryPrice"`
	ExitPrice  float64 `csv:"ExitPrice"`
	StopLoss   float64 `csv:"StopLoss"`
	TakeProfit float64 `csv:"TakeProfit"`
	ExitReason string  `csv:"ExitReason"`
	Status     string  `csv:"Status"`
	DaysHeld   int     `csv:"DaysHeld"`
	PnL        float64 `csv:"PnL"`
	PnLPercent float64 `csv:"PnLPercent"`
}

// equityRow is the CSV layout for the daily equity curve.
type equityRow struct {
	DayIndex int     `csv:"DayIndex"`
	Date     string  `csv:"Date"`
	Value    float64 `csv:"Value"`
}

// Trades writes the closed-trade history to path.
func Trades(path string, trades []models.Trade) error {
	rows := make([]*tradeRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, &tradeRow{
			Symbol:     t.Symbol,
			EntryDate:  t.EntryDate.Format(dateLayout),
			ExitDate:   t.ExitDate.Format(dateLayout),
			Quantity:   t.Quantity,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			StopLoss:   t.StopLoss,
			TakeProfit: t.TakeProfit,
			ExitReason: string(t.ExitReason),
			Status:     string(t.Status),
			DaysHeld:   t.DaysHeld,
			PnL:        t.PnL,
			PnLPercent: t.PnLPercent,
		})
	}
	return writeCSV(path, rows)
}

// EquityCurve writes the daily portfolio-value snapshots to path.
func EquityCurve(path string, curve []models.EquityPoint) error {
	rows := make([]*equityRow, 0, len(curve))
	for _, p := range curve {
		rows = append(rows, &equityRow{
			DayIndex: p.DayIndex,
			Date:     p.Date.Format(dateLayout),
			Value:    p.Value,
		})
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// RunStamp returns a filename-safe timestamp for export file names.
func RunStamp(t time.Time) string {
	return t.Format("20060102-150405")
}
