package collector

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/metiseon/metiseon/internal/core"
)

// FetchPricePanel pulls bars for every ticker concurrently, waits for the
// whole fan-out to finish, and assembles a single forward-filled panel on
// the union of observed dates. The core only ever sees the completed panel,
// never a partial one. Tickers that fail or return nothing are dropped (and
// logged); the panel errors only when no ticker produced data.
func FetchPricePanel(ctx context.Context, c PriceCollector, tickers []string, start, end time.Time, log *zap.Logger) (*core.PricePanel, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		byTick = make(map[string][]core.Bar)
	)
	for _, t := range tickers {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()
			bars, err := c.FetchBars(ctx, ticker, start, end)
			if err != nil {
				log.Warn("price fetch failed",
					zap.String("ticker", ticker),
					zap.String("collector", c.Name()),
					zap.Error(err),
				)
				return
			}
			if len(bars) == 0 {
				return
			}
			mu.Lock()
			byTick[ticker] = bars
			mu.Unlock()
		}(t)
	}
	wg.Wait()

	if len(byTick) == 0 {
		return nil, core.ErrNoData
	}
	return assemblePanel(byTick), nil
}

// assemblePanel aligns per-ticker bars onto the union date index, forward
// filling gaps. Dates before a ticker's first observation stay NaN-priced so
// they read as invalid bars downstream.
func assemblePanel(byTick map[string][]core.Bar) *core.PricePanel {
	seen := make(map[time.Time]struct{})
	for _, bars := range byTick {
		for _, b := range bars {
			seen[b.Date] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	panel := &core.PricePanel{
		Dates: dates,
		Bars:  make(map[string][]core.Bar, len(byTick)),
	}
	for ticker, bars := range byTick {
		idx := make(map[time.Time]core.Bar, len(bars))
		for _, b := range bars {
			idx[b.Date] = b
		}
		aligned := make([]core.Bar, len(dates))
		last := core.Bar{AdjClose: math.NaN()}
		for i, d := range dates {
			if b, ok := idx[d]; ok {
				last = b
			}
			aligned[i] = core.Bar{Date: d, AdjClose: last.AdjClose, Volume: last.Volume}
		}
		panel.Bars[ticker] = aligned
	}
	return panel
}

// FetchFundamentalsPanel pulls fundamental histories for every ticker
// concurrently. Failed tickers are dropped; scoring treats their absence as
// a data gap. Rows come back sorted by ticker then as-of date.
func FetchFundamentalsPanel(ctx context.Context, c FundamentalsCollector, tickers []string, log *zap.Logger) []core.FundamentalsRow {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		rows []core.FundamentalsRow
	)
	for _, t := range tickers {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()
			history, err := c.FetchFundamentals(ctx, ticker)
			if err != nil {
				log.Warn("fundamentals fetch failed",
					zap.String("ticker", ticker),
					zap.String("collector", c.Name()),
					zap.Error(err),
				)
				return
			}
			mu.Lock()
			rows = append(rows, history...)
			mu.Unlock()
		}(t)
	}
	wg.Wait()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Ticker != rows[j].Ticker {
			return rows[i].Ticker < rows[j].Ticker
		}
		return rows[i].AsOfDate.Before(rows[j].AsOfDate)
	})
	return rows
}
