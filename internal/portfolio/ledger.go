// Package portfolio owns all mutable simulation state: cash, open trades,
// the closed-trade history and the equity curve.
package portfolio

import (
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "swingtrader/internal/errors"
	"swingtrader/internal/models"
)

// Ledger is the single owner of simulation state. It is mutated only by
// the simulator's daily loop (one logical writer); the lock exists so that
// concurrent readers during a scan can never observe a torn update.
type Ledger struct {
	mu             sync.RWMutex
	initialCapital float64
	cash           float64
	open           map[string]*models.Trade
	closed         []models.Trade
	equity         []models.EquityPoint
}

// NewLedger creates a ledger for one simulation run.
func NewLedger(initialCapital float64) *Ledger {
	return &Ledger{
		initialCapital: initialCapital,
		cash:           initialCapital,
		open:           make(map[string]*models.Trade),
	}
}

// Open admits a new trade, debiting its notional from cash. It fails with
// an invariant violation if the symbol is already held, the trade is
// malformed, or the notional exceeds available cash.
func (l *Ledger) Open(t *models.Trade) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t.Quantity <= 0 {
		return apperrors.NewInvariantError("positive-quantity", t.Symbol,
			fmt.Sprintf("quantity %d", t.Quantity))
	}
	if t.StopLoss >= t.EntryPrice {
		return apperrors.NewInvariantError("stop-below-entry", t.Symbol,
			fmt.Sprintf("stop %.2f >= entry %.2f", t.StopLoss, t.EntryPrice))
	}
	if _, held := l.open[t.Symbol]; held {
		return apperrors.NewInvariantError("one-position-per-symbol", t.Symbol,
			"symbol already has an open trade")
	}
	notional := t.Notional()
	if notional > l.cash {
		return apperrors.NewInvariantError("capital-conservation", t.Symbol,
			fmt.Sprintf("notional %.2f exceeds cash %.2f", notional, l.cash))
	}

	l.cash -= notional
	l.open[t.Symbol] = t
	return nil
}

// Close exits an open trade, crediting the exit proceeds back to cash and
// moving the record to the immutable closed history. Exit fields are set
// exactly once.
func (l *Ledger) Close(symbol string, exitDate time.Time, exitPrice float64, reason models.ExitReason) (*models.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, held := l.open[symbol]
	if !held {
		return nil, apperrors.NewInvariantError("close-open-trade", symbol,
			"no open trade to close")
	}
	if !t.IsOpen() {
		return nil, apperrors.NewInvariantError("single-exit", symbol,
			fmt.Sprintf("trade already closed with %s", t.ExitReason))
	}

	t.ExitDate = exitDate
	t.ExitPrice = exitPrice
	t.ExitReason = reason
	t.DaysHeld = int(exitDate.Sub(t.EntryDate).Hours() / 24)
	t.PnL = (exitPrice - t.EntryPrice) * float64(t.Quantity)
	t.PnLPercent = (exitPrice - t.EntryPrice) / t.EntryPrice * 100
	t.Status = statusFor(reason, t.PnL)

	l.cash += exitPrice * float64(t.Quantity)
	delete(l.open, symbol)
	l.closed = append(l.closed, *t)

	return t, nil
}

// statusFor maps an exit reason to the final trade status. Fixed stops are
// recorded as stopped out; target and trailing exits lock in profit; time
// and end-of-run exits classify by P&L sign.
func statusFor(reason models.ExitReason, pnl float64) models.TradeStatus {
	switch reason {
	case models.ExitStopLoss:
		return models.StatusStoppedOut
	case models.ExitTakeProfit, models.ExitTrailingStop:
		return models.StatusClosedProfit
	default:
		if pnl > 0 {
			return models.StatusClosedProfit
		}
		return models.StatusClosedLoss
	}
}

// Snapshot appends one daily portfolio-value point to the equity curve.
func (l *Ledger) Snapshot(dayIndex int, date time.Time, value float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.equity = append(l.equity, models.EquityPoint{
		DayIndex: dayIndex,
		Date:     date,
		Value:    value,
	})
}

// Cash returns the capital not committed to open positions.
func (l *Ledger) Cash() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cash
}

// InitialCapital returns the capital the run started with.
func (l *Ledger) InitialCapital() float64 {
	return l.initialCapital
}

// Holds reports whether the symbol currently has an open trade.
func (l *Ledger) Holds(symbol string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, held := l.open[symbol]
	return held
}

// OpenCount returns the number of open trades.
func (l *Ledger) OpenCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.open)
}

// OpenTrades returns the open trades in deterministic (symbol) order. The
// pointers alias ledger-owned state and may only be mutated by the
// simulator's single writer.
func (l *Ledger) OpenTrades() []*models.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*models.Trade, 0, len(l.open))
	for _, t := range l.open {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// History returns a copy of the closed trades in close order.
func (l *Ledger) History() []models.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Trade, len(l.closed))
	copy(out, l.closed)
	return out
}

// EquityCurve returns a copy of the daily value snapshots.
func (l *Ledger) EquityCurve() []models.EquityPoint {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.EquityPoint, len(l.equity))
	copy(out, l.equity)
	return out
}
