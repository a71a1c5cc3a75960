// Package numeraire handles the composite unit of account (MEΩ): a
// date-indexed fiat conversion rate consumed by the risk estimator and the
// ledger, plus the component-weighting arithmetic that prices the unit from
// world money stocks. The component data itself comes from the collectors.
package numeraire

import (
	"math"
	"sort"
	"time"

	"github.com/metiseon/metiseon/internal/series"
)

// DefaultKappa scales the world money stock (in USD billions) to a unit
// price.
const DefaultKappa = 1e-6

// Series is the fiat value of one numeraire unit per date. The invariant
// consumers rely on: price_numeraire = price_fiat / Rate(date).
type Series struct {
	series.Series
}

// FromSeries wraps a raw series as a numeraire rate series.
func FromSeries(s series.Series) Series {
	return Series{s}
}

// Flat returns a constant-rate series; rate 1 makes fiat and numeraire
// denominations coincide, which is how the fiat code path reuses the
// numeraire-relative machinery.
func Flat(dates []time.Time, rate float64) Series {
	return Series{series.Constant(dates, rate)}
}

// RateOn returns the conversion rate on date, false when the date is absent
// or the stored rate is not a positive number.
func (s Series) RateOn(date time.Time) (float64, bool) {
	v, ok := s.At(date)
	if !ok || !(v > 0) {
		return 0, false
	}
	return v, true
}

// Convert expresses a fiat price in numeraire units.
func Convert(priceFiat, rate float64) float64 {
	if !(rate > 0) {
		return math.NaN()
	}
	return priceFiat / rate
}

// Component is one constituent of the composite: a fiat M2 stock, a metal
// stock, or a crypto market cap, all expressed in USD billions.
type Component struct {
	Symbol   string
	MCNative float64
	FXUSD    float64
	MCUSD    float64
	Weight   float64
}

// Weigh sorts components by symbol, sums the world money stock and assigns
// cap weights. Returns the weighted components and the total in USD billions.
func Weigh(components []Component) ([]Component, float64) {
	out := make([]Component, len(components))
	copy(out, components)
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })

	total := 0.0
	for _, c := range out {
		total += c.MCUSD
	}
	if total > 0 {
		for i := range out {
			out[i].Weight = out[i].MCUSD / total
		}
	}
	return out, total
}

// PriceUSD converts a world money stock into the unit's USD price.
func PriceUSD(mWorldUSD, kappa float64) float64 {
	return kappa * mWorldUSD
}

// CrossPrice re-expresses the USD unit price in another fiat via its USD
// exchange rate.
func CrossPrice(pxUSD, fxJUSD float64) float64 {
	if fxJUSD == 0 {
		return math.NaN()
	}
	return pxUSD / fxJUSD
}
