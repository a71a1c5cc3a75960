package collector

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/metiseon/metiseon/internal/core"
	"github.com/metiseon/metiseon/internal/numeraire"
)

// ErrNoComponents means every constituent source came back empty or stale.
var ErrNoComponents = &core.Error{Code: "NO_COMPONENTS", Message: "no numeraire components available"}

// CryptoCapsCollector fetches current market capitalizations (USD) by coin id.
type CryptoCapsCollector interface {
	Name() string
	Init(cfg Config) error
	FetchMarketCaps(ctx context.Context, ids []string) (map[string]float64, error)
}

// Monetary aggregate series per fiat, in the provider's own coding.
var m2Series = map[string]string{
	"USD": "M2SL",
	"EUR": "MYAGM2EZM196N",
	"JPY": "MYAGM2JPM196N",
	"CHF": "MYAGM2CHM196N",
}

const (
	goldSeries   = "GOLDAMGBD228NLBM"
	silverSeries = "SLVPRUSD"

	// Above-ground stock estimates, tonnes.
	goldStockT   = 205_000
	silverStockT = 1_600_000
	ozPerTonne   = 32150.7

	// A monetary aggregate older than this is considered stale.
	staleAfter = 60 * 24 * time.Hour
	lookback   = 90 * 24 * time.Hour
)

// FetchNumeraireComponents assembles the composite unit's constituent table
// as of a date: fiat M2 stocks converted at spot, gold and silver stocks at
// the latest fix, and BTC/ETH market caps. All figures in USD billions.
// Constituents whose data is missing or stale are skipped, not zeroed.
func FetchNumeraireComponents(ctx context.Context, monetary SeriesCollector, fx PriceCollector, caps CryptoCapsCollector, asOf time.Time, log *zap.Logger) ([]numeraire.Component, float64, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var components []numeraire.Component

	for sym, code := range m2Series {
		m2, ok := latestFresh(ctx, monetary, code, asOf)
		if !ok {
			log.Warn("monetary aggregate unavailable", zap.String("symbol", sym), zap.String("series", code))
			continue
		}
		rate, ok := fxUSD(ctx, fx, sym, asOf)
		if !ok {
			log.Warn("fx rate unavailable", zap.String("symbol", sym))
			continue
		}
		components = append(components, numeraire.Component{
			Symbol:   sym,
			MCNative: m2,
			FXUSD:    rate,
			MCUSD:    m2 * rate,
		})
	}

	if price, ok := latestFresh(ctx, monetary, goldSeries, asOf); ok {
		mc := goldStockT * ozPerTonne * price / 1e9
		components = append(components, numeraire.Component{Symbol: "XAU", MCNative: mc, FXUSD: 1, MCUSD: mc})
	}
	if price, ok := latestFresh(ctx, monetary, silverSeries, asOf); ok {
		mc := silverStockT * ozPerTonne * price / 1e9
		components = append(components, numeraire.Component{Symbol: "XAG", MCNative: mc, FXUSD: 1, MCUSD: mc})
	}

	if caps != nil {
		cryptoCaps, err := caps.FetchMarketCaps(ctx, []string{"bitcoin", "ethereum"})
		if err != nil {
			log.Warn("crypto caps unavailable", zap.Error(err))
		} else {
			for sym, capUSD := range cryptoCaps {
				mc := capUSD / 1e9
				components = append(components, numeraire.Component{Symbol: sym, MCNative: mc, FXUSD: 1, MCUSD: mc})
			}
		}
	}

	weighted, mWorld := numeraire.Weigh(components)
	if mWorld <= 0 {
		return nil, 0, ErrNoComponents
	}
	return weighted, mWorld, nil
}

// latestFresh returns the last observation of a series inside the lookback
// window, rejecting values staler than staleAfter.
func latestFresh(ctx context.Context, c SeriesCollector, code string, asOf time.Time) (float64, bool) {
	s, err := c.FetchSeries(ctx, code, asOf.Add(-lookback), asOf)
	if err != nil || s.Len() == 0 {
		return 0, false
	}
	lastDate := s.Dates[s.Len()-1]
	if asOf.Sub(lastDate) > staleAfter {
		return 0, false
	}
	return s.Values[s.Len()-1], true
}

// fxUSD returns the spot USD rate for a fiat symbol, 1 for USD itself.
func fxUSD(ctx context.Context, c PriceCollector, sym string, asOf time.Time) (float64, bool) {
	if sym == "USD" {
		return 1, true
	}
	bars, err := c.FetchBars(ctx, sym+"USD=X", asOf.AddDate(0, 0, -7), asOf.AddDate(0, 0, 1))
	if err != nil || len(bars) == 0 {
		return 0, false
	}
	last := bars[len(bars)-1]
	if !last.IsValid() {
		return 0, false
	}
	return last.AdjClose, true
}
