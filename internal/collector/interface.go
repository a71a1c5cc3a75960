// Package collector owns all market-data retrieval. The core never fetches:
// collectors assemble complete price, fundamentals and numeraire panels up
// front and pass them in by value. Network fan-out, caching and timeouts all
// live on this side of the boundary.
package collector

import (
	"context"
	"time"

	"github.com/metiseon/metiseon/internal/core"
	"github.com/metiseon/metiseon/internal/series"
)

// Config holds collector configuration
type Config struct {
	Enabled  bool
	APIKey   string
	CacheTTL time.Duration
}

// PriceCollector fetches daily adjusted bars for one ticker.
type PriceCollector interface {
	Name() string
	Init(cfg Config) error
	FetchBars(ctx context.Context, ticker string, start, end time.Time) ([]core.Bar, error)
}

// FundamentalsCollector fetches reported fundamental ratios for one ticker,
// one row per fiscal period, stamped with the period end date. Point-in-time
// lagging happens downstream.
type FundamentalsCollector interface {
	Name() string
	Init(cfg Config) error
	FetchFundamentals(ctx context.Context, ticker string) ([]core.FundamentalsRow, error)
}

// SeriesCollector fetches an arbitrary date-indexed float series by source
// code (monetary aggregates, metal fixes, benchmark rates).
type SeriesCollector interface {
	Name() string
	Init(cfg Config) error
	FetchSeries(ctx context.Context, code string, start, end time.Time) (series.Series, error)
}
