// Package risk produces forward-looking volatility estimates per instrument.
// Returns are computed on numeraire-relative prices, so the same estimator
// serves fiat- and numeraire-denominated risk. Estimation failure is reported
// as NaN, never as an error: a ticker the model cannot price simply falls out
// of the candidate set at the risk gate.
package risk

import (
	"github.com/metiseon/metiseon/internal/core"
	"github.com/metiseon/metiseon/internal/series"
)

// DefaultWindow is the realised-volatility lookback in trading days.
const DefaultWindow = 63

// Estimator computes sigma series for one method and window.
type Estimator struct {
	Method core.SigmaMethod
	Window int
}

// New returns an estimator, falling back to the default window when w <= 0.
func New(method core.SigmaMethod, window int) Estimator {
	if window <= 0 {
		window = DefaultWindow
	}
	return Estimator{Method: method, Window: window}
}

// Sigma estimates conditional volatility for a price history, expressed net
// of numeraire drift. The result is reindexed to the price series' own date
// index; only its last value feeds the decision loop.
func (e Estimator) Sigma(prices, numeraire series.Series) series.Series {
	rel := prices.DivBy(numeraire)
	returns := rel.LogReturns()

	var sigma series.Series
	switch e.Method {
	case core.SigmaGarch:
		sigma = garchSigma(returns)
	default:
		sigma = returns.RollingStd(e.Window)
	}
	return sigma.Reindex(prices.Dates)
}
