package backtest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outcome classifies a weekly decision.
type Outcome string

const (
	OutcomeBooked              Outcome = "booked"
	OutcomeSkippedNoEligible   Outcome = "skipped_no_eligible"
	OutcomeSkippedZeroQty      Outcome = "skipped_zero_qty"
	OutcomeSkippedCostExceeded Outcome = "skipped_cost_exceeded"
	OutcomeSkippedDataGap      Outcome = "skipped_data_gap"
)

// Decision records what one Friday run concluded, booked or not.
type Decision struct {
	Date       time.Time
	Outcome    Outcome
	Ticker     string
	Qty        decimal.Decimal
	Price      float64 // fiat, per unit
	FeeBP      float64
	SlippageBP float64
	Score      float64
	Sigma      float64
}

// Booked reports whether the decision resulted in a ledger entry.
func (d Decision) Booked() bool {
	return d.Outcome == OutcomeBooked
}

// Result holds the complete run output.
type Result struct {
	RunID     string
	StartDate time.Time
	EndDate   time.Time
	Decisions []Decision
	FinalNAV  float64
	Stats     Stats
}

// BookedCount returns how many decisions became trades.
func (r *Result) BookedCount() int {
	n := 0
	for _, d := range r.Decisions {
		if d.Booked() {
			n++
		}
	}
	return n
}
