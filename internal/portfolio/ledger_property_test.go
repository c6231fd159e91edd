package portfolio

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"swingtrader/internal/models"
)

// Property: over any sequence of opens and closes, cash plus open notionals
// always equals initial capital plus realized P&L, and cash never exceeds
// what the realized exits can explain.
func TestProperty_LedgerConservesCapital(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("cash + notionals = initial + realized pnl", prop.ForAll(
		func(entries []float64, exitFracs []float64) bool {
			l := NewLedger(1_000_000)

			// Open one trade per entry price, then close them against the
			// generated exit fractions.
			opened := 0
			for i, entry := range entries {
				trade := models.NewTrade(&models.Signal{
					Symbol:     fmt.Sprintf("SYM%d", i),
					Date:       day(1),
					EntryPrice: entry,
					StopLoss:   entry * 0.95,
					TakeProfit: entry * 1.2,
				}, 10, 0.04)
				if err := l.Open(trade); err != nil {
					return false
				}
				opened++
			}

			var realized float64
			for i, frac := range exitFracs {
				if i >= opened {
					break
				}
				entry := entries[i]
				closed, err := l.Close(fmt.Sprintf("SYM%d", i), day(2), entry*frac, models.ExitMaxHolding)
				if err != nil {
					return false
				}
				realized += closed.PnL
			}

			var openNotional float64
			for _, trade := range l.OpenTrades() {
				openNotional += trade.Notional()
			}

			diff := l.Cash() + openNotional - (l.InitialCapital() + realized)
			return diff < 1e-6 && diff > -1e-6
		},
		gen.SliceOfN(5, gen.Float64Range(10, 1000)),
		gen.SliceOf(gen.Float64Range(0.5, 1.5)),
	))

	properties.TestingRun(t)
}

// Property: a closed trade's status is always consistent with its exit
// reason and realized P&L.
func TestProperty_StatusConsistentWithExit(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	reasons := []models.ExitReason{
		models.ExitStopLoss,
		models.ExitTakeProfit,
		models.ExitTrailingStop,
		models.ExitMaxHolding,
		models.ExitSimulationEnd,
	}

	properties.Property("status matches reason and pnl sign", prop.ForAll(
		func(entry, exitFrac float64, reasonIdx int) bool {
			reason := reasons[reasonIdx%len(reasons)]

			l := NewLedger(1_000_000)
			trade := models.NewTrade(&models.Signal{
				Symbol:     "X",
				Date:       day(1),
				EntryPrice: entry,
				StopLoss:   entry * 0.95,
				TakeProfit: entry * 1.2,
			}, 10, 0.04)
			if err := l.Open(trade); err != nil {
				return false
			}

			closed, err := l.Close("X", day(3), entry*exitFrac, reason)
			if err != nil {
				return false
			}

			switch reason {
			case models.ExitStopLoss:
				return closed.Status == models.StatusStoppedOut
			case models.ExitTakeProfit, models.ExitTrailingStop:
				return closed.Status == models.StatusClosedProfit
			default:
				if closed.PnL > 0 {
					return closed.Status == models.StatusClosedProfit
				}
				return closed.Status == models.StatusClosedLoss
			}
		},
		gen.Float64Range(10, 1000),
		gen.Float64Range(0.5, 1.5),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
