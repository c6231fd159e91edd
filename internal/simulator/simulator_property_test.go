package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"swingtrader/internal/models"
	"swingtrader/internal/store"
)

// Property: the trailing stop never decreases once set, stays at or above
// the original stop, and the running high never decreases, no matter what
// price path the trade sees.
func TestProperty_TrailingStopMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	sim := New(simConfig(), store.NewHistory(nil), newScriptedProvider(), zerolog.Nop())

	properties.Property("trailing stop only ratchets up", prop.ForAll(
		func(path []float64) bool {
			trade := models.NewTrade(&models.Signal{
				Symbol: "X", Date: monday,
				EntryPrice: 100, StopLoss: 95, TakeProfit: 1e9,
			}, 10, 0.04)

			prevHigh := trade.HighestSeen
			prevTrailing := 0.0

			for _, px := range path {
				sim.ratchet(trade, models.Candle{High: px, Low: px * 0.98, Close: px})

				if trade.HighestSeen < prevHigh {
					return false
				}
				prevHigh = trade.HighestSeen

				if trade.HasTrailing {
					if trade.TrailingStop < trade.StopLoss {
						return false
					}
					if trade.TrailingStop < prevTrailing {
						return false
					}
					prevTrailing = trade.TrailingStop
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(50, 500)),
	))

	properties.TestingRun(t)
}

// Property: for any random price path, final capital equals initial capital
// plus the sum of realized P&L, and every trade exits exactly once with a
// consistent status.
func TestProperty_RunConservesCapital(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("capital conserved across any path", prop.ForAll(
		func(closes []float64) bool {
			days := tradingDaysFrom(monday, len(closes)+1)

			series := []models.Candle{flatCandle("RAND", days[0], 100)}
			for i, px := range closes {
				series = append(series, bar("RAND", days[i+1], px*1.02, px*0.98, px))
			}

			provider := newScriptedProvider()
			provider.add(&models.Signal{
				Symbol: "RAND", Date: days[0],
				EntryPrice: 100, StopLoss: 95, TakeProfit: 120, Strength: 0.8,
			})

			history := store.NewHistory(map[string][]models.Candle{"RAND": series})
			sim := New(simConfig(), history, provider, zerolog.Nop(), WithWorkers(2))

			result, err := sim.Run(context.Background(), days[0], days[len(days)-1])
			if err != nil {
				return false
			}

			var pnl float64
			for _, trade := range result.Trades {
				if trade.IsOpen() {
					return false
				}
				if trade.ExitDate.Before(trade.EntryDate) {
					return false
				}
				if trade.IsWin() != (trade.PnL > 0) {
					return false
				}
				pnl += trade.PnL
			}

			diff := result.FinalCapital - (result.InitialCapital + pnl)
			return diff < 1e-6 && diff > -1e-6
		},
		gen.SliceOfN(8, gen.Float64Range(80, 130)),
	))

	properties.TestingRun(t)
}
