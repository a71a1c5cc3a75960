// Package score implements the Durability-Lite factor: a deterministic rule
// stack over point-in-time fundamental ratios, clamped to [0, 100].
package score

import "github.com/metiseon/metiseon/internal/core"

const (
	// BaseScore is the starting value before any rule fires.
	BaseScore = 25.0

	penalty = 10.0
)

// bonus is a single additive rule. A nil ratio fails the test: missing data
// never earns points.
type bonus struct {
	name   string
	points float64
	test   func(core.FundamentalsRow) bool
}

func above(f func(core.FundamentalsRow) *float64, thr float64) func(core.FundamentalsRow) bool {
	return func(row core.FundamentalsRow) bool {
		v := f(row)
		return v != nil && *v > thr
	}
}

func below(f func(core.FundamentalsRow) *float64, thr float64) func(core.FundamentalsRow) bool {
	return func(row core.FundamentalsRow) bool {
		v := f(row)
		return v != nil && *v < thr
	}
}

// The single rule table both evaluation forms derive from.
var bonuses = []bonus{
	{"roe", 20, above(func(r core.FundamentalsRow) *float64 { return r.ROE }, 0.12)},
	{"debt_equity", 15, below(func(r core.FundamentalsRow) *float64 { return r.DebtEquity }, 1)},
	{"profit_margin", 15, above(func(r core.FundamentalsRow) *float64 { return r.ProfitMargin }, 0.10)},
	{"insider_own", 10, above(func(r core.FundamentalsRow) *float64 { return r.InsiderOwn }, 0.02)},
	{"rd_to_rev", 15, above(func(r core.FundamentalsRow) *float64 { return r.RDToRev }, 0.05)},
}

// leveragedOpaque is the penalty clause: high leverage with no meaningful
// insider stake. A missing insider_own passes the <0.01 check here, matching
// the historical rule set even though the bonus rules treat missing as
// failing. Kept as-is; see DESIGN.md.
func leveragedOpaque(row core.FundamentalsRow) bool {
	if row.DebtEquity == nil || *row.DebtEquity <= 1 {
		return false
	}
	return row.InsiderOwn == nil || *row.InsiderOwn < 0.01
}

// Score computes the durability score for a single row.
func Score(row core.FundamentalsRow) float64 {
	s := BaseScore
	for _, b := range bonuses {
		if b.test(row) {
			s += b.points
		}
	}
	if leveragedOpaque(row) {
		s -= penalty
	}
	return clamp(s, 0, 100)
}

// Panel evaluates every row and returns a ticker-keyed score map. It is the
// whole-panel form of Score and produces identical values row by row.
func Panel(rows []core.FundamentalsRow) map[string]float64 {
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.Ticker] = Score(row)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
