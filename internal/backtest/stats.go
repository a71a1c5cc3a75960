package backtest

import (
	"math"

	"github.com/metiseon/metiseon/internal/ledger"
)

// weeksPerYear annualizes weekly observation intervals.
const weeksPerYear = 52

// Stats summarizes the equity curve a run produced.
type Stats struct {
	TotalReturn float64 // net return, percent
	MaxDrawdown float64 // largest peak-to-trough decline, percent
	SharpeRatio float64 // annualized, zero risk-free rate
}

// CurveStats computes performance statistics from the NAV history. A curve
// with fewer than two points has no returns and yields zeros.
func CurveStats(curve []ledger.NAVPoint) Stats {
	returns := curveReturns(curve)
	if len(returns) == 0 {
		return Stats{}
	}

	total := curve[len(curve)-1].NAV/curve[0].NAV - 1
	return Stats{
		TotalReturn: total * 100,
		MaxDrawdown: maxDrawdown(curve) * 100,
		SharpeRatio: sharpeRatio(returns),
	}
}

// curveReturns derives period returns between successive NAV points,
// skipping intervals that start from a non-positive NAV.
func curveReturns(curve []ledger.NAVPoint) []float64 {
	var returns []float64
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].NAV
		if prev <= 0 {
			continue
		}
		returns = append(returns, curve[i].NAV/prev-1)
	}
	return returns
}

// maxDrawdown finds the largest peak-to-trough decline along the curve.
func maxDrawdown(curve []ledger.NAVPoint) float64 {
	var maxDD, peak float64
	for _, p := range curve {
		if p.NAV > peak {
			peak = p.NAV
		}
		if peak > 0 {
			dd := (peak - p.NAV) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// sharpeRatio computes the annualized risk-adjusted return of weekly
// observations, assuming a zero risk-free rate.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(returns)-1))
	if stdDev == 0 {
		return 0
	}

	return mean * weeksPerYear / (stdDev * math.Sqrt(weeksPerYear))
}
