// Package models provides domain models for the backtesting application.
package models

import (
	"time"
)

// Candle represents a single daily OHLCV bar.
type Candle struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Signal represents a candidate entry produced by a signal provider.
// A nil *Signal means no entry for that symbol on that day.
type Signal struct {
	Symbol     string
	Date       time.Time
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	Strength   float64 // 0-1 scale
}

// EquityPoint represents one daily snapshot of total portfolio value.
type EquityPoint struct {
	DayIndex int
	Date     time.Time
	Value    float64
}
