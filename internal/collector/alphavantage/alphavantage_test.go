package alphavantage

import (
	"testing"
	"time"
)

func TestAssembleRows(t *testing.T) {
	ov := overviewResponse{
		ReturnOnEquityTTM: "0.145",
		ProfitMargin:      "0.21",
		PercentInsiders:   "3.5",
	}
	var bal balanceResponse
	bal.QuarterlyReports = []struct {
		FiscalDateEnding       string `json:"fiscalDateEnding"`
		TotalLiabilities       string `json:"totalLiabilities"`
		TotalShareholderEquity string `json:"totalShareholderEquity"`
	}{
		{"2025-03-31", "5000000", "10000000"},
		{"2024-12-31", "None", "None"},
	}
	var inc incomeResponse
	inc.QuarterlyReports = []struct {
		FiscalDateEnding       string `json:"fiscalDateEnding"`
		TotalRevenue           string `json:"totalRevenue"`
		ResearchAndDevelopment string `json:"researchAndDevelopment"`
	}{
		{"2025-03-31", "2000000", "150000"},
	}

	rows := assembleRows("TST", ov, bal, inc)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Ticker != "TST" {
		t.Errorf("unexpected ticker %s", first.Ticker)
	}
	if !first.AsOfDate.Equal(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected as-of date %v", first.AsOfDate)
	}
	if first.ROE == nil || *first.ROE != 0.145 {
		t.Error("ROE not carried from overview")
	}
	if first.InsiderOwn == nil || *first.InsiderOwn != 0.035 {
		t.Error("insider percent not converted to fraction")
	}
	if first.DebtEquity == nil || *first.DebtEquity != 0.5 {
		t.Error("debt/equity not derived from balance sheet")
	}
	if first.RDToRev == nil || *first.RDToRev != 0.075 {
		t.Error("R&D intensity not derived from income statement")
	}

	// The "None" quarter keeps the row but leaves the derived ratios nil.
	second := rows[1]
	if second.DebtEquity != nil {
		t.Error("unparseable balance sheet should leave DebtEquity nil")
	}
	if second.RDToRev != nil {
		t.Error("quarter without income report should leave RDToRev nil")
	}
	if second.ROE == nil {
		t.Error("overview ratios should still apply to every quarter")
	}
}

func TestParsePercent(t *testing.T) {
	if p := parsePercent("None"); p != nil {
		t.Error("expected nil for unparseable percent")
	}
	if p := parsePercent("12.5"); p == nil || *p != 0.125 {
		t.Errorf("expected 0.125, got %v", p)
	}
}
