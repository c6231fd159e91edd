package store

import (
	"context"
	"sort"
	"time"

	"swingtrader/internal/models"

	apperrors "swingtrader/internal/errors"
)

const dateKeyLayout = "2006-01-02"

// History is the read-only price view for one simulation run. It is built
// once before the daily loop starts and never mutated afterwards, so it is
// safe to read from concurrent signal scans.
type History struct {
	symbols []string
	series  map[string][]models.Candle
	index   map[string]map[string]int // symbol -> date key -> series offset
}

// LoadHistory preloads the daily series for the given symbols over
// [from, to] from the backing store. Symbols with no candles in the range
// are dropped; if every symbol is empty the result is a NoData error.
func LoadHistory(ctx context.Context, ds DataStore, symbols []string, from, to time.Time) (*History, error) {
	h := &History{
		series: make(map[string][]models.Candle),
		index:  make(map[string]map[string]int),
	}

	for _, sym := range symbols {
		candles, err := ds.GetCandles(ctx, sym, from, to)
		if err != nil {
			return nil, apperrors.Wrapf(err, "loading history for %s", sym)
		}
		if len(candles) == 0 {
			continue
		}
		h.add(sym, candles)
	}

	if len(h.symbols) == 0 {
		return nil, apperrors.NewNoDataError("any symbol", time.Time{})
	}
	sort.Strings(h.symbols)

	return h, nil
}

// NewHistory builds a History directly from candle series, used in tests.
func NewHistory(series map[string][]models.Candle) *History {
	h := &History{
		series: make(map[string][]models.Candle),
		index:  make(map[string]map[string]int),
	}
	for sym, candles := range series {
		if len(candles) == 0 {
			continue
		}
		sorted := make([]models.Candle, len(candles))
		copy(sorted, candles)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})
		h.add(sym, sorted)
	}
	sort.Strings(h.symbols)
	return h
}

func (h *History) add(symbol string, candles []models.Candle) {
	h.symbols = append(h.symbols, symbol)
	h.series[symbol] = candles
	idx := make(map[string]int, len(candles))
	for i, c := range candles {
		idx[c.Timestamp.Format(dateKeyLayout)] = i
	}
	h.index[symbol] = idx
}

// Symbols returns the loaded symbols in deterministic (sorted) order.
func (h *History) Symbols() []string {
	return h.symbols
}

// CandleOn returns the candle for a symbol on an exact date, or a NoData
// error when the symbol did not trade that day.
func (h *History) CandleOn(symbol string, date time.Time) (models.Candle, error) {
	idx, ok := h.index[symbol]
	if !ok {
		return models.Candle{}, apperrors.NewNoDataError(symbol, time.Time{})
	}
	i, ok := idx[date.Format(dateKeyLayout)]
	if !ok {
		return models.Candle{}, apperrors.NewNoDataError(symbol, date)
	}
	return h.series[symbol][i], nil
}

// SeriesThrough returns the ordered candles for a symbol up to and
// including date. The returned slice aliases internal storage and must be
// treated as read-only.
func (h *History) SeriesThrough(symbol string, date time.Time) []models.Candle {
	series, ok := h.series[symbol]
	if !ok {
		return nil
	}
	// Candles are sorted; find the first candle after date.
	n := sort.Search(len(series), func(i int) bool {
		return series[i].Timestamp.After(date)
	})
	return series[:n]
}

// LastCloseAt returns the most recent close at or before date, used for
// valuing open positions across data gaps.
func (h *History) LastCloseAt(symbol string, date time.Time) (float64, bool) {
	series := h.SeriesThrough(symbol, date)
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1].Close, true
}
