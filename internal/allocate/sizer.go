package allocate

import "github.com/shopspring/decimal"

// QtyPlaces is the fixed precision of order quantities.
const QtyPlaces = 4

// Size converts a cash budget and unit price into an order quantity with
// 4-decimal half-up rounding. Accounting has to be exact and reproducible,
// which is why this is decimal arithmetic rather than float. A non-positive
// price yields zero quantity: a guard against bad quotes, not an error.
func Size(price, budget decimal.Decimal) decimal.Decimal {
	if price.Sign() <= 0 {
		return decimal.Zero
	}
	// DivRound rounds half away from zero, which for positive operands is
	// exactly round-half-up at the given precision.
	return budget.DivRound(price, QtyPlaces)
}
