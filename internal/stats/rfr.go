package stats

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// RiskFreeRate aggregates constituent yields into the composite unit's
// risk-free rate: capitalization weights are discounted by relative
// illiquidity (the least liquid constituent contributes nothing) and the
// result is the weight-normalized dot product with the yields.
func RiskFreeRate(mc, illiq, yields []float64) (float64, error) {
	n := len(mc)
	if n == 0 || len(illiq) != n || len(yields) != n {
		return 0, fmt.Errorf("stats: mismatched inputs (%d, %d, %d)", len(mc), len(illiq), len(yields))
	}

	maxIll := floats.Max(illiq)
	if !(maxIll > 0) {
		return 0, fmt.Errorf("stats: illiquidity must have a positive maximum")
	}

	w := make([]float64, n)
	for i := range w {
		w[i] = mc[i] * (1 - illiq[i]/maxIll)
	}
	total := floats.Sum(w)
	if !(total > 0) {
		return 0, fmt.Errorf("stats: degenerate weights")
	}
	floats.Scale(1/total, w)
	return floats.Dot(w, yields), nil
}
