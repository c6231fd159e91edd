// Package simulator implements the day-stepped trade-lifecycle simulation:
// exit processing, entry scanning and daily portfolio snapshots.
package simulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"swingtrader/internal/config"
	apperrors "swingtrader/internal/errors"
	"swingtrader/internal/logging"
	"swingtrader/internal/models"
	"swingtrader/internal/performance"
	"swingtrader/internal/portfolio"
	"swingtrader/internal/signal"
	"swingtrader/internal/sizing"
	"swingtrader/internal/store"
)

// Simulator drives one or more backtest runs over a preloaded history.
type Simulator struct {
	cfg      config.SimulationConfig
	history  *store.History
	provider signal.Provider
	sizer    *sizing.Sizer
	workers  int
	logger   zerolog.Logger
}

// Result carries the structured outputs of one run: the closed-trade
// history and the equity curve.
type Result struct {
	StartDate      time.Time
	EndDate        time.Time
	TradingDays    int
	InitialCapital float64
	FinalCapital   float64
	Trades         []models.Trade
	EquityCurve    []models.EquityPoint
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithWorkers sets the number of parallel scan workers.
func WithWorkers(n int) Option {
	return func(s *Simulator) { s.workers = n }
}

// New creates a simulator. The history must already cover the simulation
// range plus indicator warmup.
func New(cfg config.SimulationConfig, history *store.History, provider signal.Provider, logger zerolog.Logger, opts ...Option) *Simulator {
	s := &Simulator{
		cfg:      cfg,
		history:  history,
		provider: provider,
		sizer:    sizing.New(cfg),
		workers:  4,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run simulates [start, end] day by day. Each day processes exits first so
// freed capital is available to the entry scan, then snapshots portfolio
// value. Invariant violations abort the run; data gaps skip the affected
// symbol for the day.
func (s *Simulator) Run(ctx context.Context, start, end time.Time) (*Result, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %s before start date %s",
			apperrors.ErrConfigInvalid, end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	days := TradingDays(start, end)
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: no trading days between %s and %s",
			apperrors.ErrConfigInvalid, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	s.logger.Info().
		Int("trading_days", len(days)).
		Int("symbols", len(s.history.Symbols())).
		Float64("initial_capital", s.cfg.InitialCapital).
		Msg("Starting backtest")

	pool := performance.NewWorkerPool(s.workers)
	pool.Start()
	defer pool.Stop()

	ledger := portfolio.NewLedger(s.cfg.InitialCapital)

	for i, day := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := s.processExits(ledger, day); err != nil {
			return nil, err
		}
		if err := s.scanEntries(ctx, pool, ledger, day); err != nil {
			return nil, err
		}
		ledger.Snapshot(i, day, s.portfolioValue(ledger, day))
	}

	if err := s.closeRemaining(ledger, days[len(days)-1]); err != nil {
		return nil, err
	}

	trades := ledger.History()
	curve := ledger.EquityCurve()
	finalCapital := ledger.Cash()

	s.logger.Info().
		Int("trades", len(trades)).
		Float64("final_capital", finalCapital).
		Msg("Backtest complete")

	return &Result{
		StartDate:      days[0],
		EndDate:        days[len(days)-1],
		TradingDays:    len(days),
		InitialCapital: s.cfg.InitialCapital,
		FinalCapital:   finalCapital,
		Trades:         trades,
		EquityCurve:    curve,
	}, nil
}

// processExits runs the per-trade state machine for every open trade. The
// priority order is fixed: trailing stop while in profit, then the original
// stop, then the target, then the holding-period cap; a surviving trade
// ratchets its highest-seen price and trailing stop afterwards.
func (s *Simulator) processExits(ledger *portfolio.Ledger, day time.Time) error {
	for _, t := range ledger.OpenTrades() {
		candle, err := s.history.CandleOn(t.Symbol, day)
		if err != nil {
			if apperrors.IsNoData(err) {
				logging.LogSkip(s.logger, t.Symbol, day, "no candle for exit check")
				continue
			}
			return err
		}

		switch {
		case t.InProfit() && t.HasTrailing && candle.Low <= t.TrailingStop:
			if err := s.closeTrade(ledger, t.Symbol, day, t.TrailingStop, models.ExitTrailingStop); err != nil {
				return err
			}

		case candle.Low <= t.StopLoss:
			if err := s.closeTrade(ledger, t.Symbol, day, t.StopLoss, models.ExitStopLoss); err != nil {
				return err
			}

		case candle.High >= t.TakeProfit:
			if err := s.closeTrade(ledger, t.Symbol, day, t.TakeProfit, models.ExitTakeProfit); err != nil {
				return err
			}

		case int(day.Sub(t.EntryDate).Hours()/24) >= s.cfg.MaxHoldingDays:
			if err := s.closeTrade(ledger, t.Symbol, day, candle.Close, models.ExitMaxHolding); err != nil {
				return err
			}

		default:
			s.ratchet(t, candle)
		}
	}
	return nil
}

// ratchet updates the running high and, once the trade is in profit, lifts
// the trailing stop. The trailing stop starts no lower than the original
// stop and only ever moves up.
func (s *Simulator) ratchet(t *models.Trade, candle models.Candle) {
	if candle.High > t.HighestSeen {
		t.HighestSeen = candle.High
	}
	if !t.InProfit() {
		return
	}

	floor := t.StopLoss
	if t.HasTrailing {
		floor = t.TrailingStop
	}
	lifted := t.HighestSeen * (1 - t.TrailingStopPct)
	if lifted > floor {
		t.TrailingStop = lifted
	} else {
		t.TrailingStop = floor
	}
	t.HasTrailing = true
}

func (s *Simulator) closeTrade(ledger *portfolio.Ledger, symbol string, day time.Time, price float64, reason models.ExitReason) error {
	t, err := ledger.Close(symbol, day, price, reason)
	if err != nil {
		return err
	}
	logging.LogClose(s.logger, symbol, day, string(reason), price, t.PnL)
	return nil
}

// scanEntries queries the signal provider for every eligible symbol. The
// scans run on the worker pool (they only read the shared history); results
// are admitted serially in symbol order so concurrent sizing can never
// over-allocate cash and runs stay deterministic.
func (s *Simulator) scanEntries(ctx context.Context, pool *performance.WorkerPool, ledger *portfolio.Ledger, day time.Time) error {
	if ledger.OpenCount() >= s.cfg.MaxPositions {
		return nil
	}

	symbols := s.history.Symbols()
	eligible := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if !ledger.Holds(sym) {
			eligible = append(eligible, sym)
		}
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		signals = make(map[string]*models.Signal, len(eligible))
	)

	for _, sym := range eligible {
		sym := sym
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()

			sig, err := s.provider.Scan(ctx, sym, day)
			if err != nil {
				if apperrors.IsNoData(err) {
					logging.LogSkip(s.logger, sym, day, "no candle for entry scan")
				} else {
					s.logger.Warn().Err(err).Str("symbol", sym).Msg("Signal scan failed")
				}
				return
			}
			if sig == nil {
				return
			}

			mu.Lock()
			signals[sym] = sig
			mu.Unlock()
		})
	}
	wg.Wait()

	// Serial admission in deterministic symbol order.
	for _, sym := range eligible {
		sig, ok := signals[sym]
		if !ok {
			continue
		}
		if ledger.OpenCount() >= s.cfg.MaxPositions {
			break
		}

		res := s.sizer.Size(ledger.Cash(), sig.EntryPrice, sig.StopLoss)
		if !res.Viable {
			s.logger.Debug().Err(apperrors.NewSizingError(sym, res.Reason)).Msg("Entry skipped")
			continue
		}

		trade := models.NewTrade(sig, res.Quantity, s.cfg.TrailingStopPct)
		if err := ledger.Open(trade); err != nil {
			return err
		}
		logging.LogOpen(s.logger, sym, day, res.Quantity, sig.EntryPrice, sig.StopLoss, sig.TakeProfit)
	}

	return nil
}

// portfolioValue marks open positions at the day's close, falling back to
// the last known close across data gaps and to the entry price before any
// close is known.
func (s *Simulator) portfolioValue(ledger *portfolio.Ledger, day time.Time) float64 {
	value := ledger.Cash()
	for _, t := range ledger.OpenTrades() {
		price := t.EntryPrice
		if close, ok := s.history.LastCloseAt(t.Symbol, day); ok {
			price = close
		}
		value += price * float64(t.Quantity)
	}
	return value
}

// closeRemaining force-closes whatever is still open on the final day at
// that day's close (or the last known close across a gap).
func (s *Simulator) closeRemaining(ledger *portfolio.Ledger, lastDay time.Time) error {
	for _, t := range ledger.OpenTrades() {
		price := t.EntryPrice
		if candle, err := s.history.CandleOn(t.Symbol, lastDay); err == nil {
			price = candle.Close
		} else if close, ok := s.history.LastCloseAt(t.Symbol, lastDay); ok {
			price = close
		}
		if err := s.closeTrade(ledger, t.Symbol, lastDay, price, models.ExitSimulationEnd); err != nil {
			return err
		}
	}
	return nil
}
