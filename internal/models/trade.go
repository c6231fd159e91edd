package models

import "time"

// TradeStatus represents the lifecycle state of a simulated trade.
type TradeStatus string

const (
	StatusOpen         TradeStatus = "OPEN"
	StatusClosedProfit TradeStatus = "CLOSED_PROFIT"
	StatusClosedLoss   TradeStatus = "CLOSED_LOSS"
	StatusStoppedOut   TradeStatus = "STOPPED_OUT"
)

// ExitReason represents why a trade was closed.
type ExitReason string

const (
	ExitStopLoss      ExitReason = "STOP_LOSS"
	ExitTakeProfit    ExitReason = "TAKE_PROFIT"
	ExitTrailingStop  ExitReason = "TRAILING_STOP"
	ExitMaxHolding    ExitReason = "MAX_HOLDING_PERIOD"
	ExitSimulationEnd ExitReason = "SIMULATION_END"
)

// Trade is the record of one simulated swing trade. While OPEN it is owned
// and mutated exclusively by the portfolio ledger; once closed it is
// immutable.
type Trade struct {
	Symbol     string
	EntryDate  time.Time
	EntryPrice float64
	Quantity   int
	StopLoss   float64
	TakeProfit float64

	// TrailingStopPct is the fixed ratchet distance, e.g. 0.04 for 4%.
	TrailingStopPct float64

	// TrailingStop is set only once the trade has been in profit. Once set
	// it never decreases and is never below StopLoss.
	TrailingStop float64
	HasTrailing  bool

	// HighestSeen is the running maximum of daily highs since entry.
	HighestSeen float64

	Status TradeStatus

	// Exit fields, set exactly once at close.
	ExitDate   time.Time
	ExitPrice  float64
	ExitReason ExitReason
	PnL        float64
	PnLPercent float64
	DaysHeld   int
}

// NewTrade creates an open trade from a signal and a sized quantity.
func NewTrade(sig *Signal, quantity int, trailingPct float64) *Trade {
	return &Trade{
		Symbol:          sig.Symbol,
		EntryDate:       sig.Date,
		EntryPrice:      sig.EntryPrice,
		Quantity:        quantity,
		StopLoss:        sig.StopLoss,
		TakeProfit:      sig.TakeProfit,
		TrailingStopPct: trailingPct,
		HighestSeen:     sig.EntryPrice,
		Status:          StatusOpen,
	}
}

// Notional returns the capital committed at entry.
func (t *Trade) Notional() float64 {
	return t.EntryPrice * float64(t.Quantity)
}

// RiskAmount returns the loss realized if the original stop is hit.
func (t *Trade) RiskAmount() float64 {
	return (t.EntryPrice - t.StopLoss) * float64(t.Quantity)
}

// InProfit reports whether the trade has ever traded above its entry price.
func (t *Trade) InProfit() bool {
	return t.HighestSeen > t.EntryPrice
}

// IsOpen reports whether the trade has not yet exited.
func (t *Trade) IsOpen() bool {
	return t.Status == StatusOpen
}

// IsWin reports whether a closed trade finished with positive P&L.
func (t *Trade) IsWin() bool {
	return !t.IsOpen() && t.PnL > 0
}
