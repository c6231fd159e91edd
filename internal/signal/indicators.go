package signal

import (
	"math"

	"swingtrader/internal/models"
)

// Indicator helpers over an ordered daily series, evaluated at the last
// index. Each returns 0 when the series is too short.

func sma(candles []models.Candle, index, period int) float64 {
	if index < period-1 {
		return 0
	}

	var sum float64
	for i := index - period + 1; i <= index; i++ {
		sum += candles[i].Close
	}
	return sum / float64(period)
}

func ema(candles []models.Candle, index, period int) float64 {
	if index < period-1 {
		return sma(candles, index, period)
	}

	multiplier := 2.0 / float64(period+1)
	value := sma(candles, period-1, period)

	for i := period; i <= index; i++ {
		value = (candles[i].Close-value)*multiplier + value
	}
	return value
}

func rsi(candles []models.Candle, index, period int) float64 {
	if index < period {
		return 50
	}

	var gains, losses float64
	for i := index - period + 1; i <= index; i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// atr is the simple-average true range over the trailing period.
func atr(candles []models.Candle, index, period int) float64 {
	if index < period {
		return 0
	}

	var sum float64
	for i := index - period + 1; i <= index; i++ {
		highLow := candles[i].High - candles[i].Low
		highClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowClose := math.Abs(candles[i].Low - candles[i-1].Close)
		sum += math.Max(highLow, math.Max(highClose, lowClose))
	}
	return sum / float64(period)
}

func volumeRatio(candles []models.Candle, index, period int) float64 {
	if index < period-1 {
		return 0
	}

	var sum float64
	for i := index - period + 1; i <= index; i++ {
		sum += float64(candles[i].Volume)
	}
	avg := sum / float64(period)
	if avg == 0 {
		return 0
	}
	return float64(candles[index].Volume) / avg
}
