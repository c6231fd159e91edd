// Package metrics computes aggregate performance statistics from a closed
// trade history and a daily equity curve.
package metrics

import (
	"math"
	"sort"

	"swingtrader/internal/models"
)

// tradingDaysPerYear annualizes daily return statistics.
const tradingDaysPerYear = 252

// Report is the full set of statistics for one backtest run. All percent
// fields are expressed as percentages, not fractions.
type Report struct {
	TotalTrades   int `json:"total_trades"`
	WinningTrades int `json:"winning_trades"`
	LosingTrades  int `json:"losing_trades"`

	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	Expectancy   float64 `json:"expectancy"`

	TotalPnL       float64 `json:"total_pnl"`
	TotalReturnPct float64 `json:"total_return_pct"`
	FinalCapital   float64 `json:"final_capital"`

	AverageWin  float64 `json:"average_win"`
	AverageLoss float64 `json:"average_loss"`
	LargestWin  float64 `json:"largest_win"`
	LargestLoss float64 `json:"largest_loss"`

	MaxDrawdown    float64 `json:"max_drawdown"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	RecoveryFactor float64 `json:"recovery_factor"`

	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`
	CalmarRatio  float64 `json:"calmar_ratio"`

	MaxWinStreak  int `json:"max_win_streak"`
	MaxLossStreak int `json:"max_loss_streak"`

	AvgDaysHeld        float64 `json:"avg_days_held"`
	AvgWinningDaysHeld float64 `json:"avg_winning_days_held"`
	AvgLosingDaysHeld  float64 `json:"avg_losing_days_held"`

	ExitReasons map[string]int `json:"exit_reasons"`
}

// Calculate builds a report from the closed trades and the equity curve of
// one run. An empty trade list yields a zero report with the capital fields
// still filled in.
func Calculate(trades []models.Trade, equity []models.EquityPoint, initialCapital float64) *Report {
	r := &Report{
		FinalCapital: initialCapital,
		ExitReasons:  make(map[string]int),
	}
	if len(equity) > 0 {
		r.FinalCapital = equity[len(equity)-1].Value
	}

	r.MaxDrawdown, r.MaxDrawdownPct = drawdown(equity, initialCapital)
	r.SharpeRatio = sharpe(equity)
	r.SortinoRatio = sortino(equity)

	if initialCapital > 0 {
		r.TotalReturnPct = (r.FinalCapital - initialCapital) / initialCapital * 100
	}
	if r.MaxDrawdownPct > 0 {
		r.CalmarRatio = r.TotalReturnPct / r.MaxDrawdownPct
	}

	if len(trades) == 0 {
		return r
	}

	var grossProfit, grossLoss float64
	var winDays, lossDays, totalDays int

	for _, t := range trades {
		r.TotalTrades++
		r.TotalPnL += t.PnL
		totalDays += t.DaysHeld
		r.ExitReasons[string(t.ExitReason)]++

		if t.PnL > 0 {
			r.WinningTrades++
			grossProfit += t.PnL
			winDays += t.DaysHeld
			if t.PnL > r.LargestWin {
				r.LargestWin = t.PnL
			}
		} else {
			r.LosingTrades++
			grossLoss += -t.PnL
			lossDays += t.DaysHeld
			if t.PnL < r.LargestLoss {
				r.LargestLoss = t.PnL
			}
		}
	}

	r.WinRate = float64(r.WinningTrades) / float64(r.TotalTrades) * 100

	switch {
	case grossLoss > 0:
		r.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		r.ProfitFactor = math.Inf(1)
	}

	if r.WinningTrades > 0 {
		r.AverageWin = grossProfit / float64(r.WinningTrades)
		r.AvgWinningDaysHeld = float64(winDays) / float64(r.WinningTrades)
	}
	if r.LosingTrades > 0 {
		r.AverageLoss = grossLoss / float64(r.LosingTrades)
		r.AvgLosingDaysHeld = float64(lossDays) / float64(r.LosingTrades)
	}
	r.AvgDaysHeld = float64(totalDays) / float64(r.TotalTrades)

	winFrac := r.WinRate / 100
	r.Expectancy = winFrac*r.AverageWin - (1-winFrac)*r.AverageLoss

	if r.MaxDrawdown > 0 {
		r.RecoveryFactor = r.TotalPnL / r.MaxDrawdown
	}

	r.MaxWinStreak, r.MaxLossStreak = streaks(trades)

	return r
}

// drawdown returns the largest peak-to-trough decline of the equity curve,
// in absolute terms and as a percentage of the peak.
func drawdown(equity []models.EquityPoint, initialCapital float64) (float64, float64) {
	peak := initialCapital
	var maxDD, maxDDPct float64

	for _, p := range equity {
		if p.Value > peak {
			peak = p.Value
		}
		dd := peak - p.Value
		if dd > maxDD {
			maxDD = dd
			if peak > 0 {
				maxDDPct = dd / peak * 100
			}
		}
	}
	return maxDD, maxDDPct
}

// dailyReturns converts the equity curve to day-over-day simple returns.
func dailyReturns(equity []models.EquityPoint) []float64 {
	if len(equity) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, (equity[i].Value-prev)/prev)
	}
	return returns
}

// sharpe is the annualized mean/stddev of daily returns. No risk-free rate
// is subtracted. Zero when returns have no variance.
func sharpe(equity []models.EquityPoint) float64 {
	returns := dailyReturns(equity)
	if len(returns) < 2 {
		return 0
	}

	mean := meanOf(returns)
	sd := stddev(returns, mean)
	if sd == 0 {
		return 0
	}
	return mean / sd * math.Sqrt(tradingDaysPerYear)
}

// sortino is like sharpe but penalizes only downside deviation.
func sortino(equity []models.EquityPoint) float64 {
	returns := dailyReturns(equity)
	if len(returns) < 2 {
		return 0
	}

	mean := meanOf(returns)

	var downside []float64
	for _, ret := range returns {
		if ret < 0 {
			downside = append(downside, ret)
		}
	}
	if len(downside) < 2 {
		return 0
	}

	sd := stddev(downside, meanOf(downside))
	if sd == 0 {
		return 0
	}
	return mean / sd * math.Sqrt(tradingDaysPerYear)
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64, mean float64) float64 {
	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// streaks returns the longest run of consecutive wins and losses in exit
// order.
func streaks(trades []models.Trade) (int, int) {
	ordered := make([]models.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExitDate.Before(ordered[j].ExitDate)
	})

	var maxWin, maxLoss, curWin, curLoss int
	for _, t := range ordered {
		if t.PnL > 0 {
			curWin++
			curLoss = 0
			if curWin > maxWin {
				maxWin = curWin
			}
		} else {
			curLoss++
			curWin = 0
			if curLoss > maxLoss {
				maxLoss = curLoss
			}
		}
	}
	return maxWin, maxLoss
}
