package stats

import "gonum.org/v1/gonum/floats"

// ReplicatorStep advances portfolio weights one increment of replicator
// dynamics. Returns are clipped to ±5σ before computing relative fitness;
// negative weights are floored at zero and the result renormalized. If every
// weight collapses, the previous weights are returned unchanged.
func ReplicatorStep(weights, returns, sigma []float64, dt float64) []float64 {
	n := len(weights)
	clipped := make([]float64, n)
	for i, r := range returns {
		lim := 5 * sigma[i]
		switch {
		case r > lim:
			clipped[i] = lim
		case r < -lim:
			clipped[i] = -lim
		default:
			clipped[i] = r
		}
	}

	avg := floats.Dot(weights, clipped)
	next := make([]float64, n)
	for i := range next {
		next[i] = weights[i] + weights[i]*(clipped[i]-avg)*dt
		if next[i] < 0 {
			next[i] = 0
		}
	}

	total := floats.Sum(next)
	if total <= 0 {
		copy(next, weights)
		return next
	}
	floats.Scale(1/total, next)
	return next
}
