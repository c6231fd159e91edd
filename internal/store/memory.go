package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"swingtrader/internal/models"
)

// MemoryStore is an in-memory DataStore used in tests and for synthetic
// price series.
type MemoryStore struct {
	mu      sync.RWMutex
	candles map[string][]models.Candle
	runs    []*RunRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		candles: make(map[string][]models.Candle),
	}
}

// SaveCandles adds candles, replacing any with the same symbol and date.
func (m *MemoryStore) SaveCandles(ctx context.Context, candles []models.Candle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range candles {
		series := m.candles[c.Symbol]
		replaced := false
		for i := range series {
			if series[i].Timestamp.Equal(c.Timestamp) {
				series[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			series = append(series, c)
		}
		sort.Slice(series, func(i, j int) bool {
			return series[i].Timestamp.Before(series[j].Timestamp)
		})
		m.candles[c.Symbol] = series
	}

	return nil
}

// GetCandles returns the ordered series for a symbol within [from, to].
func (m *MemoryStore) GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Candle
	for _, c := range m.candles[symbol] {
		if c.Timestamp.Before(from) || c.Timestamp.After(to) {
			continue
		}
		out = append(out, c)
	}

	return out, nil
}

// Symbols returns every symbol with stored candles, sorted.
func (m *MemoryStore) Symbols(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	symbols := make([]string, 0, len(m.candles))
	for sym := range m.candles {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	return symbols, nil
}

// SaveRun keeps the run record in memory.
func (m *MemoryStore) SaveRun(ctx context.Context, run *RunRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = append(m.runs, run)
	return int64(len(m.runs)), nil
}

// Runs returns the saved run records.
func (m *MemoryStore) Runs() []*RunRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*RunRecord, len(m.runs))
	copy(out, m.runs)
	return out
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
