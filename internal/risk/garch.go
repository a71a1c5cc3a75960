package risk

import (
	"math"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/metiseon/metiseon/internal/series"
)

// minGarchObs is the minimum number of non-NaN returns the fit needs.
const minGarchObs = 20

// returnScale rescales log returns to percent units before fitting. The
// likelihood surface of daily returns near 1e-4 variance is numerically flat;
// fitting on r*100 and dividing the vol back out avoids that.
const returnScale = 100

// garchSigma fits a zero-mean GARCH(1,1) by maximum likelihood and returns
// the in-sample conditional volatility, indexed on the return dates. On
// insufficient data or a failed fit it returns an all-NaN series on the same
// index: the documented fallback-to-exclusion path, not a hard failure.
func garchSigma(returns series.Series) series.Series {
	dates := make([]time.Time, 0, returns.Len())
	r := make([]float64, 0, returns.Len())
	for i, v := range returns.Values {
		if math.IsNaN(v) {
			continue
		}
		dates = append(dates, returns.Dates[i])
		r = append(r, v*returnScale)
	}
	if len(r) < minGarchObs {
		return series.NaNs(returns.Dates)
	}

	sampleVar := variance(r)
	if !(sampleVar > 0) {
		return series.NaNs(returns.Dates)
	}

	nll := func(x []float64) float64 {
		omega, alpha, beta := x[0], x[1], x[2]
		if omega <= 0 || alpha < 0 || beta < 0 || alpha+beta >= 1 {
			return math.Inf(1)
		}
		h := sampleVar
		ll := 0.0
		for _, rt := range r {
			ll += math.Log(h) + rt*rt/h
			h = omega + alpha*rt*rt + beta*h
		}
		return 0.5 * ll
	}

	problem := optimize.Problem{Func: nll}
	x0 := []float64{0.1 * sampleVar, 0.05, 0.9}
	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil || result == nil || math.IsInf(result.F, 0) || math.IsNaN(result.F) {
		return series.NaNs(returns.Dates)
	}

	omega, alpha, beta := result.X[0], result.X[1], result.X[2]
	if omega <= 0 || alpha < 0 || beta < 0 || alpha+beta >= 1 {
		return series.NaNs(returns.Dates)
	}

	// Filter the fitted variance back through the sample.
	vols := make([]float64, len(r))
	h := sampleVar
	for i, rt := range r {
		vols[i] = math.Sqrt(h) / returnScale
		h = omega + alpha*rt*rt + beta*h
	}
	return series.New(dates, vols)
}

func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := 0.0
	for _, x := range xs {
		m += x
	}
	m /= float64(len(xs))
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return ss / float64(len(xs)-1)
}
