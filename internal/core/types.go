package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Denomination selects the unit of account for reported NAV.
type Denomination string

const (
	DenomFiat      Denomination = "fiat"
	DenomNumeraire Denomination = "numeraire"
)

// SigmaMethod selects the volatility estimator.
type SigmaMethod string

const (
	SigmaGarch    SigmaMethod = "garch"
	SigmaRealised SigmaMethod = "realised"
)

// Bar is one forward-filled daily observation for a ticker.
type Bar struct {
	Date     time.Time
	AdjClose float64
	Volume   float64
}

// IsValid checks if the bar has a usable price
func (b Bar) IsValid() bool {
	return b.AdjClose > 0
}

// PricePanel is a date-aligned panel of bars per ticker. The date index is
// shared: every ticker's bar slice has one entry per panel date, already
// forward-filled by the collector. The panel is read-only to the core.
type PricePanel struct {
	Dates []time.Time
	Bars  map[string][]Bar
}

// Tickers returns the tickers present in the panel.
func (p *PricePanel) Tickers() []string {
	out := make([]string, 0, len(p.Bars))
	for t := range p.Bars {
		out = append(out, t)
	}
	return out
}

// IndexOf returns the position of date in the panel index, or -1.
func (p *PricePanel) IndexOf(date time.Time) int {
	for i, d := range p.Dates {
		if d.Equal(date) {
			return i
		}
	}
	return -1
}

// At returns the bar for ticker on date.
func (p *PricePanel) At(ticker string, date time.Time) (Bar, bool) {
	i := p.IndexOf(date)
	if i < 0 {
		return Bar{}, false
	}
	bars, ok := p.Bars[ticker]
	if !ok || i >= len(bars) {
		return Bar{}, false
	}
	return bars[i], true
}

// FundamentalsRow holds point-in-time fundamental ratios for one ticker.
// Every ratio is a fraction (0.15 = 15%). A nil field means the source did
// not report it; each scoring rule documents its own missing-value policy.
type FundamentalsRow struct {
	Ticker       string
	AsOfDate     time.Time
	ROE          *float64
	DebtEquity   *float64
	ProfitMargin *float64
	RDToRev      *float64
	InsiderOwn   *float64
}

// VisibleAt reports whether the row is old enough to be used on the given
// decision date under the point-in-time lag.
func (f FundamentalsRow) VisibleAt(decision time.Time, lag time.Duration) bool {
	return !f.AsOfDate.After(decision.Add(-lag))
}

// Trade is an immutable ledger record. Appended only, never updated.
type Trade struct {
	Timestamp time.Time
	Ticker    string
	Qty       decimal.Decimal
	Price     float64
	Fee       float64
}

// PositionSnapshot is one row of the position time series, written on every
// trade event. Qty is the running total for the ticker and CostBasis the
// weighted-average acquisition cost per unit.
type PositionSnapshot struct {
	Timestamp time.Time
	Ticker    string
	Qty       decimal.Decimal
	CostBasis float64
	NAV       float64
}

// Float64Ptr is a convenience for building optional ratio fields.
func Float64Ptr(v float64) *float64 { return &v }
