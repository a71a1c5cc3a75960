package allocate

import (
	"math"

	"github.com/shopspring/decimal"
)

// impactCoeff scales the square-root market-impact term.
const impactCoeff = 0.001

// SlippageBP estimates market impact in basis points with a square-root
// model: 10000 * 0.001 * sqrt(qty / adv10). When adv10 is zero, negative or
// NaN there is no observable liquidity constraint and slippage is reported
// as zero, leaving the fee alone to face the cap.
func SlippageBP(qty decimal.Decimal, adv10 float64) float64 {
	if !(adv10 > 0) {
		return 0
	}
	q, _ := qty.Float64()
	if q <= 0 {
		return 0
	}
	return 10000 * impactCoeff * math.Sqrt(q/adv10)
}

// Allow reports whether the sized trade clears the cost cap: fixed fee plus
// estimated slippage must not exceed capBP. Monotone in quantity and adv10.
func Allow(qty decimal.Decimal, adv10, feeBP, capBP float64) bool {
	return feeBP+SlippageBP(qty, adv10) <= capBP
}
