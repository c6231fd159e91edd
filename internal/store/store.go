// Package store provides price history persistence and the read-only
// per-run history view consumed by the simulator.
package store

import (
	"context"
	"time"

	"swingtrader/internal/models"
)

// DataStore defines the interface for price history persistence.
type DataStore interface {
	// Candles
	SaveCandles(ctx context.Context, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error)
	Symbols(ctx context.Context) ([]string, error)

	// Backtest runs
	SaveRun(ctx context.Context, run *RunRecord) (int64, error)

	// Lifecycle
	Close() error
}

// RunRecord is a completed backtest run persisted for later inspection.
type RunRecord struct {
	CreatedAt      time.Time
	StartDate      time.Time
	EndDate        time.Time
	Symbols        []string
	InitialCapital float64
	FinalCapital   float64
	TotalTrades    int
	WinRate        float64
	MaxDrawdownPct float64
	SharpeRatio    float64
	Trades         []models.Trade
}
