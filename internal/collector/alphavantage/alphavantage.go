// Package alphavantage fetches fundamental ratios from the Alpha Vantage API.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/metiseon/metiseon/internal/collector"
	"github.com/metiseon/metiseon/internal/core"
)

const baseURL = "https://www.alphavantage.co/query"

// AlphaVantage implements collector.FundamentalsCollector.
type AlphaVantage struct {
	apiKey string
	client *http.Client
	cache  *collector.Cache
}

// New creates an Alpha Vantage collector. cache may be nil to disable caching.
func New(cache *collector.Cache) *AlphaVantage {
	return &AlphaVantage{
		client: &http.Client{Timeout: 15 * time.Second},
		cache:  cache,
	}
}

func (a *AlphaVantage) Name() string { return "alphavantage" }

func (a *AlphaVantage) Init(cfg collector.Config) error {
	if cfg.APIKey == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("alphavantage requires an api_key"))
	}
	a.apiKey = cfg.APIKey
	return nil
}

// FetchFundamentals fetches quarterly fundamental rows for ticker. Rows
// are stamped with the fiscal period end date; point-in-time lagging is
// the caller's concern.
func (a *AlphaVantage) FetchFundamentals(ctx context.Context, ticker string) ([]core.FundamentalsRow, error) {
	key := "alphavantage:" + ticker
	if a.cache != nil {
		if v, ok := a.cache.Get(key); ok {
			return v.([]core.FundamentalsRow), nil
		}
	}

	var overview overviewResponse
	if err := a.get(ctx, "OVERVIEW", ticker, &overview); err != nil {
		return nil, err
	}
	var balance balanceResponse
	if err := a.get(ctx, "BALANCE_SHEET", ticker, &balance); err != nil {
		return nil, err
	}
	var income incomeResponse
	if err := a.get(ctx, "INCOME_STATEMENT", ticker, &income); err != nil {
		return nil, err
	}

	rows := assembleRows(ticker, overview, balance, income)
	if len(rows) == 0 {
		return nil, core.ErrNoData
	}

	if a.cache != nil {
		a.cache.Set(key, rows)
	}
	return rows, nil
}

func (a *AlphaVantage) get(ctx context.Context, function, ticker string, out any) error {
	url := fmt.Sprintf("%s?function=%s&symbol=%s&apikey=%s", baseURL, function, ticker, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return core.WrapError(core.ErrCollectorFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("%s: unexpected status %d", function, resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return core.WrapError(core.ErrCollectorFailed, err)
	}
	return nil
}

type overviewResponse struct {
	ReturnOnEquityTTM string `json:"ReturnOnEquityTTM"`
	ProfitMargin      string `json:"ProfitMargin"`
	PercentInsiders   string `json:"PercentInsiders"`
}

type balanceResponse struct {
	QuarterlyReports []struct {
		FiscalDateEnding       string `json:"fiscalDateEnding"`
		TotalLiabilities       string `json:"totalLiabilities"`
		TotalShareholderEquity string `json:"totalShareholderEquity"`
	} `json:"quarterlyReports"`
}

type incomeResponse struct {
	QuarterlyReports []struct {
		FiscalDateEnding       string `json:"fiscalDateEnding"`
		TotalRevenue           string `json:"totalRevenue"`
		ResearchAndDevelopment string `json:"researchAndDevelopment"`
	} `json:"quarterlyReports"`
}

// assembleRows joins balance-sheet and income-statement quarters by fiscal
// date. Overview ratios are trailing figures so they repeat on every row.
func assembleRows(ticker string, ov overviewResponse, bal balanceResponse, inc incomeResponse) []core.FundamentalsRow {
	roe := parseRatio(ov.ReturnOnEquityTTM)
	pm := parseRatio(ov.ProfitMargin)
	insider := parsePercent(ov.PercentInsiders)

	rdByDate := make(map[string]*float64)
	for _, q := range inc.QuarterlyReports {
		rev := parseRatio(q.TotalRevenue)
		rd := parseRatio(q.ResearchAndDevelopment)
		if rev == nil || rd == nil || *rev <= 0 {
			continue
		}
		rdByDate[q.FiscalDateEnding] = core.Float64Ptr(*rd / *rev)
	}

	var rows []core.FundamentalsRow
	for _, q := range bal.QuarterlyReports {
		asOf, err := time.Parse("2006-01-02", q.FiscalDateEnding)
		if err != nil {
			continue
		}
		row := core.FundamentalsRow{
			Ticker:       ticker,
			AsOfDate:     asOf,
			ROE:          roe,
			ProfitMargin: pm,
			InsiderOwn:   insider,
			RDToRev:      rdByDate[q.FiscalDateEnding],
		}
		liab := parseRatio(q.TotalLiabilities)
		eq := parseRatio(q.TotalShareholderEquity)
		if liab != nil && eq != nil && *eq > 0 {
			row.DebtEquity = core.Float64Ptr(*liab / *eq)
		}
		rows = append(rows, row)
	}
	return rows
}

func parseRatio(s string) *float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// parsePercent converts Alpha Vantage's "12.5" style percent to a fraction.
func parsePercent(s string) *float64 {
	f := parseRatio(s)
	if f == nil {
		return nil
	}
	return core.Float64Ptr(*f / 100)
}
