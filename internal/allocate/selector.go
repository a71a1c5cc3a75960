// Package allocate holds the per-period decision pieces: asset selection,
// trade sizing and the transaction-cost gate.
package allocate

import (
	"math"
	"sort"
)

// Select picks at most one ticker to buy. Candidates are the tickers with
// both a score and a sigma, minus lastWinner (pass "" for none). The risk
// gate keeps candidates at or below the median candidate sigma, recomputed
// each call; a NaN sigma fails the comparison and drops out. Among gated
// candidates the highest score wins, lowest sigma breaking ties. Returns
// false when nothing is eligible; that is a skip, not an error.
func Select(scores, sigmas map[string]float64, lastWinner string) (string, bool) {
	var candidates []string
	for t, sc := range scores {
		if t == lastWinner {
			continue
		}
		if math.IsNaN(sc) {
			continue
		}
		if _, ok := sigmas[t]; !ok {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return "", false
	}

	med := medianSigma(candidates, sigmas)
	if math.IsNaN(med) {
		return "", false
	}

	best := ""
	bestScore := math.Inf(-1)
	bestSigma := math.Inf(1)
	sort.Strings(candidates) // deterministic walk order
	for _, t := range candidates {
		s := sigmas[t]
		if !(s <= med) { // NaN sigma fails here, by design of the comparison
			continue
		}
		sc := scores[t]
		if sc > bestScore || (sc == bestScore && s < bestSigma) {
			best, bestScore, bestSigma = t, sc, s
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// medianSigma returns the median over the candidates' finite sigmas, NaN if
// none are finite.
func medianSigma(candidates []string, sigmas map[string]float64) float64 {
	vals := make([]float64, 0, len(candidates))
	for _, t := range candidates {
		if v := sigmas[t]; !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
