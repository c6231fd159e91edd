// Package sizing computes viable trade quantities under a fixed
// risk-per-trade budget.
package sizing

import (
	"fmt"
	"math"

	"swingtrader/internal/config"
)

// Result holds a position sizing recommendation. A non-viable result
// carries a human-readable reason and a zero quantity.
type Result struct {
	Quantity    int
	Notional    float64
	RiskAmount  float64
	RiskPercent float64
	Viable      bool
	Reason      string
}

// Sizer computes long-only position sizes. It holds no mutable state and
// has no side effects.
type Sizer struct {
	riskFraction float64
	minNotional  float64
	maxFraction  float64
}

// New creates a sizer from the simulation configuration.
func New(cfg config.SimulationConfig) *Sizer {
	return &Sizer{
		riskFraction: cfg.RiskPerTrade,
		minNotional:  cfg.MinNotional,
		maxFraction:  cfg.MaxNotionalFraction,
	}
}

// Size computes the quantity for an entry at entryPrice with a protective
// stop at stopLoss, given the capital currently available. The risk budget
// is riskFraction of that capital; the position notional is bounded below
// by the configured minimum and above by maxFraction of capital.
func (s *Sizer) Size(availableCapital, entryPrice, stopLoss float64) Result {
	if entryPrice <= 0 || stopLoss <= 0 || entryPrice <= stopLoss {
		return nonViable("non-positive risk per unit")
	}

	riskPerUnit := entryPrice - stopLoss
	riskBudget := availableCapital * s.riskFraction
	quantity := int(math.Floor(riskBudget / riskPerUnit))

	if quantity <= 0 {
		return nonViable(fmt.Sprintf("risk budget %.2f below the risk of one share (%.2f)", riskBudget, riskPerUnit))
	}

	// Cap the notional at the configured fraction of available capital.
	maxNotional := availableCapital * s.maxFraction
	if float64(quantity)*entryPrice > maxNotional {
		quantity = int(math.Floor(maxNotional / entryPrice))
	}
	if quantity <= 0 {
		return nonViable(fmt.Sprintf("max notional %.2f cannot fit one share at %.2f", maxNotional, entryPrice))
	}

	notional := float64(quantity) * entryPrice
	if notional < s.minNotional {
		return nonViable(fmt.Sprintf("notional %.2f below minimum %.2f", notional, s.minNotional))
	}

	riskAmount := float64(quantity) * riskPerUnit
	riskPercent := 0.0
	if availableCapital > 0 {
		riskPercent = riskAmount / availableCapital * 100
	}

	return Result{
		Quantity:    quantity,
		Notional:    notional,
		RiskAmount:  riskAmount,
		RiskPercent: riskPercent,
		Viable:      true,
		Reason:      "position size within risk limits",
	}
}

func nonViable(reason string) Result {
	return Result{Viable: false, Reason: reason}
}
