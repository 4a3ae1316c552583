package analytics

import (
	"math"
	"sort"
	"time"
)

const daysPerYear = 365.25

// SolverConfig bounds the Newton-Raphson XIRR solver. The rate clamp is a
// divergence guard, not a mathematical necessity, so it stays named and
// configurable rather than buried as a literal.
type SolverConfig struct {
	Guess         float64 // initial annualized rate
	Tolerance     float64 // |NPV| below this counts as converged
	MaxIterations int
	MinRate       float64 // abort below this (-1 == -100% annualized)
	MaxRate       float64 // abort above this (10 == +1000% annualized)
}

// DefaultSolverConfig returns the production solver parameters.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Guess:         0.10,
		Tolerance:     1e-6,
		MaxIterations: 100,
		MinRate:       -1,
		MaxRate:       10,
	}
}

// XIRR solves for the constant annualized rate that zeroes the net
// present value of the dated flow series, returned as a percentage.
// ok is false when the series is degenerate (fewer than two flows) or the
// solver fails to converge; that is an indeterminate result, not an error.
func XIRR(flows []CashFlow, cfg SolverConfig) (pct float64, ok bool) {
	if len(flows) < 2 {
		return 0, false
	}

	sorted := make([]CashFlow, len(flows))
	copy(sorted, flows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	base := sorted[0].Date
	amounts := make([]float64, len(sorted))
	years := make([]float64, len(sorted))
	for i, f := range sorted {
		amounts[i] = f.Amount.InexactFloat64()
		years[i] = yearsBetween(base, f.Date)
	}

	rate := cfg.Guess
	for i := 0; i < cfg.MaxIterations; i++ {
		npv, derivative := npvAndDerivative(amounts, years, rate)
		if math.Abs(npv) < cfg.Tolerance {
			return rate * 100, true
		}
		if derivative == 0 || math.IsNaN(derivative) || math.IsInf(derivative, 0) {
			return 0, false
		}

		next := rate - npv/derivative
		if math.IsNaN(next) || next <= cfg.MinRate || next >= cfg.MaxRate {
			return 0, false
		}
		rate = next
	}
	return 0, false
}

// npvAndDerivative evaluates Σ a_i (1+r)^-t_i and its analytic derivative
// with respect to r in one pass.
func npvAndDerivative(amounts, years []float64, rate float64) (npv, derivative float64) {
	for i := range amounts {
		t := years[i]
		discount := math.Pow(1+rate, t)
		npv += amounts[i] / discount
		derivative -= amounts[i] * t / (discount * (1 + rate))
	}
	return npv, derivative
}

func yearsBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / daysPerYear
}
