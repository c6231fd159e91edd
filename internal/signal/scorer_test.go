package signal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swingtrader/internal/config"
	apperrors "swingtrader/internal/errors"
	"swingtrader/internal/models"
	"swingtrader/internal/store"
)

func signalConfig() config.SignalConfig {
	return config.SignalConfig{
		RSIPeriod:         14,
		RSIOversold:       30,
		RSIOverbought:     70,
		EMAShort:          9,
		EMALong:           21,
		SMATrend:          50,
		VolumeMAPeriod:    20,
		VolumeSpikeRatio:  1.5,
		ATRPeriod:         14,
		ATRStopMultiple:   2.0,
		ATRTargetMultiple: 3.0,
		MinStrength:       0.5,
	}
}

// seriesOf builds n consecutive weekday candles starting 2025-01-06 with
// closes produced by fn(i).
func seriesOf(symbol string, n int, fn func(i int) float64) []models.Candle {
	candles := make([]models.Candle, 0, n)
	d := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		close := fn(i)
		candles = append(candles, models.Candle{
			Symbol: symbol, Timestamp: d,
			Open: close, High: close + 1, Low: close - 1, Close: close,
			Volume: 100000,
		})
		d = d.AddDate(0, 0, 1)
	}
	return candles
}

func TestScan_MissingCandleIsNoData(t *testing.T) {
	series := seriesOf("RELIANCE", 60, func(i int) float64 { return 100 })
	h := store.NewHistory(map[string][]models.Candle{"RELIANCE": series})
	scorer := NewThresholdScorer(signalConfig(), h)

	// A Saturday; no candle exists.
	_, err := scorer.Scan(context.Background(), "RELIANCE", time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, apperrors.IsNoData(err))
}

func TestScan_InsufficientWarmupYieldsNoSignal(t *testing.T) {
	series := seriesOf("INFY", 20, func(i int) float64 { return 100 + float64(i) })
	h := store.NewHistory(map[string][]models.Candle{"INFY": series})
	scorer := NewThresholdScorer(signalConfig(), h)

	sig, err := scorer.Scan(context.Background(), "INFY", series[len(series)-1].Timestamp)
	require.NoError(t, err)
	assert.Nil(t, sig)
}

func TestScan_UptrendProducesEntry(t *testing.T) {
	// Steady uptrend: short EMA above long EMA, close above the trend SMA,
	// and positive ten-day momentum carry the vote.
	series := seriesOf("TCS", 60, func(i int) float64 { return 100 + float64(i)*0.5 })
	h := store.NewHistory(map[string][]models.Candle{"TCS": series})
	scorer := NewThresholdScorer(signalConfig(), h)

	sig, err := scorer.Scan(context.Background(), "TCS", series[len(series)-1].Timestamp)
	require.NoError(t, err)
	require.NotNil(t, sig)

	assert.Equal(t, "TCS", sig.Symbol)
	assert.Equal(t, series[len(series)-1].Close, sig.EntryPrice)
	assert.Less(t, sig.StopLoss, sig.EntryPrice)
	assert.Greater(t, sig.TakeProfit, sig.EntryPrice)
	assert.GreaterOrEqual(t, sig.Strength, 0.5)
	// Target distance is 1.5x the stop distance (3 ATR vs 2 ATR).
	assert.InDelta(t, 1.5, (sig.TakeProfit-sig.EntryPrice)/(sig.EntryPrice-sig.StopLoss), 1e-9)
}

func TestScan_DowntrendYieldsNoSignal(t *testing.T) {
	series := seriesOf("HDFC", 60, func(i int) float64 { return 200 - float64(i)*0.5 })
	h := store.NewHistory(map[string][]models.Candle{"HDFC": series})
	scorer := NewThresholdScorer(signalConfig(), h)

	sig, err := scorer.Scan(context.Background(), "HDFC", series[len(series)-1].Timestamp)
	require.NoError(t, err)
	assert.Nil(t, sig)
}

func TestSMA(t *testing.T) {
	candles := seriesOf("X", 10, func(i int) float64 { return float64(i + 1) })

	// Average of 6..10.
	assert.InDelta(t, 8.0, sma(candles, 9, 5), 1e-9)
	// Too short.
	assert.Equal(t, 0.0, sma(candles, 2, 5))
}

func TestEMA_TracksRecentPricesCloser(t *testing.T) {
	candles := seriesOf("X", 30, func(i int) float64 {
		if i < 20 {
			return 100
		}
		return 120
	})

	last := len(candles) - 1
	emaVal := ema(candles, last, 9)
	smaVal := sma(candles, last, 20)
	assert.Greater(t, emaVal, smaVal, "EMA must weight the recent jump more heavily")
}

func TestRSI(t *testing.T) {
	up := seriesOf("X", 30, func(i int) float64 { return 100 + float64(i) })
	down := seriesOf("X", 30, func(i int) float64 { return 200 - float64(i) })
	flatShort := seriesOf("X", 5, func(i int) float64 { return 100 })

	assert.Equal(t, 100.0, rsi(up, 29, 14), "all gains")
	assert.Equal(t, 0.0, rsi(down, 29, 14), "all losses")
	assert.Equal(t, 50.0, rsi(flatShort, 4, 14), "insufficient data is neutral")
}

func TestATR(t *testing.T) {
	// Constant 2-point daily range, no gaps: ATR equals 2.
	candles := seriesOf("X", 30, func(i int) float64 { return 100 })

	assert.InDelta(t, 2.0, atr(candles, 29, 14), 1e-9)
	assert.Equal(t, 0.0, atr(candles, 5, 14), "insufficient data")
}

func TestVolumeRatio(t *testing.T) {
	candles := seriesOf("X", 30, func(i int) float64 { return 100 })
	candles[29].Volume = 300000 // 3x the flat 100k average, diluted by itself

	ratio := volumeRatio(candles, 29, 20)
	assert.Greater(t, ratio, 1.5)
	assert.Equal(t, 0.0, volumeRatio(candles, 5, 20), "insufficient data")
}
