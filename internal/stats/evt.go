package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// minExcesses is the smallest tail sample worth fitting a GPD to.
const minExcesses = 5

// EVTThreshold estimates an extreme loss threshold with the
// peaks-over-threshold method: excesses over the empirical quantile are
// fitted to a generalized Pareto distribution and the threshold is pushed out
// to the fitted quantile.
type EVTThreshold struct {
	Quantile float64
}

// NewEVTThreshold returns an estimator at the given tail quantile,
// defaulting to 0.999 when q is out of (0,1).
func NewEVTThreshold(q float64) EVTThreshold {
	if !(q > 0 && q < 1) {
		q = 0.999
	}
	return EVTThreshold{Quantile: q}
}

// Fit returns the estimated extreme threshold for the sample. With too few
// excesses the empirical quantile itself is returned.
func (e EVTThreshold) Fit(data []float64) float64 {
	xs := make([]float64, len(data))
	copy(xs, data)
	sort.Float64s(xs)

	thr := stat.Quantile(e.Quantile, stat.Empirical, xs, nil)

	var excess []float64
	for _, x := range xs {
		if x > thr {
			excess = append(excess, x-thr)
		}
	}
	if len(excess) < minExcesses {
		return thr
	}

	xi, sigma, ok := fitGPD(excess)
	if !ok {
		return thr
	}
	gpd := distuv.GeneralizedPareto{Mu: 0, Sigma: sigma, Xi: xi}
	return thr + gpd.Quantile(e.Quantile)
}

// fitGPD estimates generalized Pareto parameters (location fixed at zero) by
// the method of moments.
func fitGPD(excess []float64) (xi, sigma float64, ok bool) {
	m := stat.Mean(excess, nil)
	v := stat.Variance(excess, nil)
	if !(m > 0) || !(v > 0) {
		return 0, 0, false
	}
	r := m * m / v
	xi = 0.5 * (1 - r)
	sigma = 0.5 * m * (r + 1)
	if !(sigma > 0) || xi >= 1 {
		return 0, 0, false
	}
	return xi, sigma, true
}
