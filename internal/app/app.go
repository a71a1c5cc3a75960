// Package app wires configuration, collectors, the ledger and the decision
// runner into the two entry points the CLI exposes: historical backtests
// and the live weekly run.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/metiseon/metiseon/internal/backtest"
	"github.com/metiseon/metiseon/internal/collector"
	"github.com/metiseon/metiseon/internal/collector/alphavantage"
	"github.com/metiseon/metiseon/internal/collector/coingecko"
	"github.com/metiseon/metiseon/internal/collector/fred"
	"github.com/metiseon/metiseon/internal/collector/yahoo"
	"github.com/metiseon/metiseon/internal/config"
	"github.com/metiseon/metiseon/internal/core"
	"github.com/metiseon/metiseon/internal/ledger"
	"github.com/metiseon/metiseon/internal/metrics"
	"github.com/metiseon/metiseon/internal/numeraire"
	"github.com/metiseon/metiseon/internal/report"
	"github.com/metiseon/metiseon/internal/storage/archive"
)

// riskWarmup is how much price history the volatility model gets beyond the
// decision range.
const riskWarmup = 365 * 24 * time.Hour

// App is the application orchestrator.
type App struct {
	cfg        *config.Config
	log        *zap.Logger
	collectors *collector.Registry
	caps       collector.CryptoCapsCollector
	led        *ledger.Ledger
	met        *metrics.Registry
	metSrv     *metrics.Server
	renderer   *report.Renderer
}

// New builds the app from config: collectors registered per their config
// blocks, the ledger opened, the report archive attached and metrics
// started when enabled.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	a := &App{
		cfg:        cfg,
		log:        log,
		collectors: collector.NewRegistry(),
	}

	if err := a.registerCollectors(); err != nil {
		return nil, err
	}

	led, err := ledger.Open(cfg.Ledger.DBPath)
	if err != nil {
		return nil, err
	}
	a.led = led

	store, err := archive.New(cfg.Archive)
	if err != nil {
		led.Close()
		return nil, err
	}
	a.renderer = report.NewRenderer(store, cfg.Report.Path, log)

	if cfg.Metrics.Enabled {
		a.met = metrics.NewRegistry()
		a.metSrv = metrics.NewServer(cfg.Metrics.Addr, a.met, log)
		a.metSrv.Start()
	}
	return a, nil
}

func (a *App) registerCollectors() error {
	for name, cc := range a.cfg.Collectors {
		if !cc.Enabled {
			continue
		}
		cache := collector.NewCache(cc.CacheTTL)
		ccfg := collector.Config{Enabled: cc.Enabled, APIKey: cc.APIKey, CacheTTL: cc.CacheTTL}

		switch name {
		case "yahoo":
			c := yahoo.New(cache)
			if err := c.Init(ccfg); err != nil {
				return err
			}
			a.collectors.RegisterPrices(c)
		case "alphavantage":
			c := alphavantage.New(cache)
			if err := c.Init(ccfg); err != nil {
				return err
			}
			a.collectors.RegisterFundamentals(c)
		case "fred":
			c := fred.New(cache)
			if err := c.Init(ccfg); err != nil {
				return err
			}
			a.collectors.RegisterSeries(c)
		case "coingecko":
			c := coingecko.New(cache)
			if err := c.Init(ccfg); err != nil {
				return err
			}
			a.caps = c
		default:
			a.log.Warn("unknown collector in config", zap.String("name", name))
		}
	}
	return nil
}

// Close releases the ledger and stops the metrics listener.
func (a *App) Close() error {
	if a.metSrv != nil {
		a.metSrv.Stop()
	}
	return a.led.Close()
}

// Backtest runs the weekly loop over [start, end] and archives a report for
// the final state.
func (a *App) Backtest(ctx context.Context, start, end time.Time, opts backtest.Options) (*backtest.Result, error) {
	in, err := a.assembleInputs(ctx, start, end)
	if err != nil {
		return nil, err
	}

	runner := backtest.NewRunner(a.cfg, a.led, a.met, a.log)
	res, err := runner.Run(ctx, *in, start, end, opts)
	if err != nil {
		return nil, err
	}
	if err := a.archiveReport(ctx, in, res, end); err != nil {
		a.log.Warn("report archival failed", zap.Error(err))
	}
	return res, nil
}

// Trade runs exactly one decision for the most recent Friday on or before
// asOf, with enough history behind it to fit the volatility model.
func (a *App) Trade(ctx context.Context, asOf time.Time, opts backtest.Options) (*backtest.Result, error) {
	friday := lastFriday(asOf)
	res, err := a.Backtest(ctx, friday, friday, opts)
	if err != nil {
		return nil, err
	}
	if len(res.Decisions) == 0 {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("no trading bar on %s", friday.Format("2006-01-02")))
	}
	return res, nil
}

// assembleInputs fetches everything the runner needs up front: the price
// panel with a warmup year, the fundamentals history, and the numeraire
// rate when the config denominates in it.
func (a *App) assembleInputs(ctx context.Context, start, end time.Time) (*backtest.Inputs, error) {
	prices, ok := a.collectors.Prices("yahoo")
	if !ok {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("no price collector enabled"))
	}

	panel, err := collector.FetchPricePanel(ctx, prices, a.cfg.Tickers, start.Add(-riskWarmup), end.AddDate(0, 0, 1), a.log)
	a.recordFetch(prices.Name(), err)
	if err != nil {
		return nil, err
	}

	in := &backtest.Inputs{
		Panel:     panel,
		Numeraire: numeraire.Flat(panel.Dates, 1),
	}

	if fund, ok := a.collectors.Fundamentals("alphavantage"); ok {
		in.Fundamentals = collector.FetchFundamentalsPanel(ctx, fund, a.cfg.Tickers, a.log)
		a.recordFetch(fund.Name(), nil)
	}

	if core.Denomination(a.cfg.Allocation.Denomination) == core.DenomNumeraire {
		rate, err := a.numeraireRate(ctx, prices, end)
		if err != nil {
			return nil, err
		}
		in.Numeraire = numeraire.Flat(panel.Dates, rate)
	}
	return in, nil
}

// numeraireRate prices the composite unit from its current constituent
// table. Metal fixes and crypto caps have no usable history, so the rate is
// held flat across the run rather than pretending to a point-in-time
// series.
func (a *App) numeraireRate(ctx context.Context, prices collector.PriceCollector, asOf time.Time) (float64, error) {
	monetary, ok := a.collectors.Series("fred")
	if !ok {
		return 0, core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("numeraire denomination needs the fred collector"))
	}
	_, mWorld, err := collector.FetchNumeraireComponents(ctx, monetary, prices, a.caps, asOf, a.log)
	a.recordFetch(monetary.Name(), err)
	if err != nil {
		return 0, err
	}
	return numeraire.PriceUSD(mWorld, numeraire.DefaultKappa), nil
}

func (a *App) archiveReport(ctx context.Context, in *backtest.Inputs, res *backtest.Result, runDate time.Time) error {
	curve, err := a.led.NAVHistory(ctx)
	if err != nil {
		return err
	}

	sum := report.Summary{
		RunDate:      runDate,
		RunID:        res.RunID,
		Outcome:      "no_decisions",
		NAV:          res.FinalNAV,
		Denomination: a.cfg.Allocation.Denomination,
	}
	if n := len(res.Decisions); n > 0 {
		last := res.Decisions[n-1]
		sum.RunDate = last.Date
		sum.Outcome = string(last.Outcome)
		sum.Ticker = last.Ticker
		sum.Qty = last.Qty.String()
		sum.Price = last.Price
		sum.FeeBP = last.FeeBP
		sum.SlippageBP = last.SlippageBP
		sum.Score = last.Score
		sum.Sigma = last.Sigma
	}
	if core.Denomination(a.cfg.Allocation.Denomination) == core.DenomNumeraire {
		if rate, ok := in.Numeraire.RateOn(sum.RunDate); ok {
			nav, err := a.led.NAVInNumeraire(ctx, latestPrices(in.Panel), rate)
			if err == nil {
				f, _ := nav.Float64()
				sum.NAVNumer = f
			}
		}
	}

	_, err = a.renderer.Render(ctx, sum, curve)
	return err
}

// latestPrices pulls the last valid close per ticker out of the panel.
func latestPrices(panel *core.PricePanel) map[string]float64 {
	out := make(map[string]float64, len(panel.Bars))
	for ticker, bars := range panel.Bars {
		for i := len(bars) - 1; i >= 0; i-- {
			if bars[i].IsValid() {
				out[ticker] = bars[i].AdjClose
				break
			}
		}
	}
	return out
}

func (a *App) recordFetch(name string, err error) {
	if a.met == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	a.met.RecordCollectorRequest(name, status)
}

// lastFriday returns d if it is a Friday, otherwise the Friday before it.
func lastFriday(d time.Time) time.Time {
	offset := (int(d.Weekday()) - int(time.Friday) + 7) % 7
	return d.AddDate(0, 0, -offset)
}
