package signal

import (
	"context"
	"time"

	"swingtrader/internal/config"
	"swingtrader/internal/models"
	"swingtrader/internal/store"
)

// ThresholdScorer scores a fixed set of indicator checks and emits an entry
// when enough of them agree. It is a pure function of the read-only history
// and is safe to call from concurrent scans.
type ThresholdScorer struct {
	cfg     config.SignalConfig
	history *store.History
}

// NewThresholdScorer creates a scorer over a preloaded history.
func NewThresholdScorer(cfg config.SignalConfig, history *store.History) *ThresholdScorer {
	return &ThresholdScorer{cfg: cfg, history: history}
}

// Scan evaluates the symbol on the given date. The day's candle must exist
// (NoData otherwise); too little warmup history simply yields no signal.
func (s *ThresholdScorer) Scan(ctx context.Context, symbol string, date time.Time) (*models.Signal, error) {
	if _, err := s.history.CandleOn(symbol, date); err != nil {
		return nil, err
	}

	series := s.history.SeriesThrough(symbol, date)
	warmup := s.cfg.SMATrend
	if s.cfg.ATRPeriod+1 > warmup {
		warmup = s.cfg.ATRPeriod + 1
	}
	if len(series) < warmup {
		return nil, nil
	}

	last := len(series) - 1
	closePrice := series[last].Close

	// Bullish votes across independent indicator checks.
	checks := 0
	bullish := 0

	vote := func(ok bool) {
		checks++
		if ok {
			bullish++
		}
	}

	vote(rsi(series, last, s.cfg.RSIPeriod) < s.cfg.RSIOversold)
	vote(ema(series, last, s.cfg.EMAShort) > ema(series, last, s.cfg.EMALong))
	vote(closePrice > sma(series, last, s.cfg.SMATrend))
	vote(volumeRatio(series, last, s.cfg.VolumeMAPeriod) >= s.cfg.VolumeSpikeRatio)
	vote(last >= 10 && closePrice > series[last-10].Close)

	strength := float64(bullish) / float64(checks)
	if strength < s.cfg.MinStrength {
		return nil, nil
	}

	rangeATR := atr(series, last, s.cfg.ATRPeriod)
	if rangeATR <= 0 {
		return nil, nil
	}

	stopLoss := closePrice - s.cfg.ATRStopMultiple*rangeATR
	if stopLoss <= 0 {
		return nil, nil
	}

	return &models.Signal{
		Symbol:     symbol,
		Date:       date,
		EntryPrice: closePrice,
		StopLoss:   stopLoss,
		TakeProfit: closePrice + s.cfg.ATRTargetMultiple*rangeATR,
		Strength:   strength,
	}, nil
}
