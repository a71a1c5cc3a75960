// Package backtest drives the weekly decision loop: every Friday in range,
// score the universe, gate it on risk, pick one asset, size the buy, check
// the cost gate and book the trade. The same loop serves historical
// backtests and the live one-shot trade command; only the date range
// differs.
package backtest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/metiseon/metiseon/internal/allocate"
	"github.com/metiseon/metiseon/internal/config"
	"github.com/metiseon/metiseon/internal/core"
	"github.com/metiseon/metiseon/internal/ledger"
	"github.com/metiseon/metiseon/internal/metrics"
	"github.com/metiseon/metiseon/internal/numeraire"
	"github.com/metiseon/metiseon/internal/risk"
	"github.com/metiseon/metiseon/internal/score"
	"github.com/metiseon/metiseon/internal/series"
)

const adv10Window = 10

// Inputs is the complete market picture the runner decides on. It is
// assembled by the collectors before the loop starts; the runner itself
// never fetches.
type Inputs struct {
	Panel        *core.PricePanel
	Numeraire    numeraire.Series // fiat per numeraire unit; Flat(1) for fiat runs
	Fundamentals []core.FundamentalsRow
}

// Options carries per-run overrides on top of the config.
type Options struct {
	Budget float64 // fixed fiat budget per week; 0 means unset
	Pct    float64 // fraction of NAV per week; 0 means unset
}

// Runner executes decision loops against a ledger.
type Runner struct {
	cfg *config.Config
	led *ledger.Ledger
	est risk.Estimator
	met *metrics.Registry // optional
	log *zap.Logger
}

// NewRunner wires a runner. met may be nil when metrics are disabled.
func NewRunner(cfg *config.Config, led *ledger.Ledger, met *metrics.Registry, log *zap.Logger) *Runner {
	return &Runner{
		cfg: cfg,
		led: led,
		est: risk.New(core.SigmaMethod(cfg.Risk.SigmaMethod), cfg.Risk.Window),
		met: met,
		log: log,
	}
}

// Run walks every Friday with a trading bar in [start, end] and decides.
// Ledger failures abort the run; everything else degrades to a skip.
func (r *Runner) Run(ctx context.Context, in Inputs, start, end time.Time, opts Options) (*Result, error) {
	began := time.Now()
	res := &Result{
		RunID:     uuid.NewString(),
		StartDate: start,
		EndDate:   end,
	}
	r.log.Info("run started",
		zap.String("run_id", res.RunID),
		zap.Time("start", start),
		zap.Time("end", end),
		zap.String("sigma_method", r.cfg.Risk.SigmaMethod),
	)

	for _, date := range in.Panel.Dates {
		if date.Before(start) || date.After(end) {
			continue
		}
		if date.Weekday() != time.Friday {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		dec, err := r.decide(ctx, in, date, opts)
		if err != nil {
			return nil, err
		}
		res.Decisions = append(res.Decisions, dec)
		if r.met != nil {
			r.met.RecordDecision(string(dec.Outcome))
		}
	}

	nav, err := r.led.NAV(ctx)
	if err != nil {
		return nil, err
	}
	res.FinalNAV = nav

	curve, err := r.led.NAVHistory(ctx)
	if err != nil {
		return nil, err
	}
	res.Stats = CurveStats(curve)

	if r.met != nil {
		r.met.SetNAV(nav)
		r.met.RecordRunDuration(time.Since(began).Seconds())
	}
	r.log.Info("run finished",
		zap.String("run_id", res.RunID),
		zap.Int("decisions", len(res.Decisions)),
		zap.Int("booked", res.BookedCount()),
		zap.Float64("nav", nav),
	)
	return res, nil
}

// decide runs one Friday. Only the winner's price and liquidity are read
// past selection, so a thin ticker can still lose on score without its data
// gaps aborting the week.
func (r *Runner) decide(ctx context.Context, in Inputs, date time.Time, opts Options) (Decision, error) {
	dec := Decision{Date: date, Outcome: OutcomeSkippedNoEligible}

	// A missing conversion rate is a data gap, not a selection failure;
	// resolve it before selection so the outcome label stays truthful.
	rate, ok := r.sizingRate(in.Numeraire, date)
	if !ok {
		dec.Outcome = OutcomeSkippedDataGap
		r.log.Warn("no numeraire rate", zap.Time("date", date))
		return dec, nil
	}

	scores := r.scoresOn(in.Fundamentals, date)
	sigmas := r.sigmasOn(in, date)

	lastWinner, _, err := r.led.LastTicker(ctx)
	if err != nil {
		return dec, err
	}

	winner, ok := allocate.Select(scores, sigmas, lastWinner)
	if !ok {
		r.log.Info("no eligible asset", zap.Time("date", date))
		return dec, nil
	}
	dec.Ticker = winner
	dec.Score = scores[winner]
	dec.Sigma = sigmas[winner]

	bar, ok := in.Panel.At(winner, date)
	if !ok || !bar.IsValid() {
		dec.Outcome = OutcomeSkippedZeroQty
		r.log.Warn("winner has no valid price", zap.String("ticker", winner), zap.Time("date", date))
		return dec, nil
	}
	dec.Price = bar.AdjClose

	price := decimal.NewFromFloat(numeraire.Convert(bar.AdjClose, rate))

	budget, err := r.budget(ctx, opts, rate)
	if err != nil {
		return dec, err
	}

	qty := allocate.Size(price, budget)
	dec.Qty = qty
	if qty.IsZero() {
		dec.Outcome = OutcomeSkippedZeroQty
		return dec, nil
	}

	adv10 := r.adv10On(in.Panel, winner, date)
	dec.FeeBP = r.cfg.Allocation.FeeBP
	dec.SlippageBP = allocate.SlippageBP(qty, adv10)
	if !allocate.Allow(qty, adv10, r.cfg.Allocation.FeeBP, r.cfg.Allocation.SlipCapBP) {
		dec.Outcome = OutcomeSkippedCostExceeded
		r.log.Info("cost gate rejected trade",
			zap.String("ticker", winner),
			zap.Float64("fee_bp", dec.FeeBP),
			zap.Float64("slippage_bp", dec.SlippageBP),
			zap.Float64("cap_bp", r.cfg.Allocation.SlipCapBP),
		)
		return dec, nil
	}

	// Ledger figures stay fiat regardless of the sizing denomination.
	qtyF, _ := qty.Float64()
	fee := bar.AdjClose * qtyF * r.cfg.Allocation.FeeBP / 10000
	if err := r.led.BookTrade(ctx, date, winner, qty, bar.AdjClose, fee); err != nil {
		return dec, err
	}
	dec.Outcome = OutcomeBooked
	if r.met != nil {
		r.met.RecordTrade()
	}
	r.log.Info("trade booked",
		zap.Time("date", date),
		zap.String("ticker", winner),
		zap.String("qty", qty.String()),
		zap.Float64("price", bar.AdjClose),
		zap.Float64("fee", fee),
	)
	return dec, nil
}

// scoresOn computes durability scores from the latest fundamentals row per
// ticker that was public knowledge on the decision date. Tickers with
// nothing visible are absent, which excludes them from selection.
func (r *Runner) scoresOn(rows []core.FundamentalsRow, date time.Time) map[string]float64 {
	lag := r.cfg.Risk.PITLag()
	latest := make(map[string]core.FundamentalsRow)
	for _, row := range rows {
		if !row.VisibleAt(date, lag) {
			continue
		}
		if cur, ok := latest[row.Ticker]; !ok || row.AsOfDate.After(cur.AsOfDate) {
			latest[row.Ticker] = row
		}
	}
	scores := make(map[string]float64, len(latest))
	for t, row := range latest {
		scores[t] = score.Score(row)
	}
	return scores
}

// sigmasOn fits the volatility model per ticker on history up to the
// decision date. Unfit models surface as NaN and fail the risk gate.
func (r *Runner) sigmasOn(in Inputs, date time.Time) map[string]float64 {
	numHist := in.Numeraire.UpTo(date)

	sigmas := make(map[string]float64)
	for ticker, bars := range in.Panel.Bars {
		prices := make([]float64, len(bars))
		for i, b := range bars {
			prices[i] = b.AdjClose
		}
		hist := series.New(in.Panel.Dates, prices).UpTo(date)
		if hist.ValidCount() == 0 {
			continue
		}
		s := r.est.Sigma(hist, numHist).Last()
		sigmas[ticker] = s
		if r.met != nil && s != s {
			r.met.RecordRiskFitFailure()
		}
	}
	return sigmas
}

// sizingRate resolves the fiat-per-unit rate prices and budgets convert at
// on a decision date. Fiat runs always rate 1; numeraire runs need a
// positive rate on the date.
func (r *Runner) sizingRate(num numeraire.Series, date time.Time) (float64, bool) {
	if core.Denomination(r.cfg.Allocation.Denomination) == core.DenomFiat {
		return 1, true
	}
	return num.RateOn(date)
}

// budget resolves the weekly spend: explicit budget flag, then pct flag,
// then configured pct of NAV, then the configured fixed amount. Fixed
// budgets are read in the sizing denomination as given; percentage budgets
// derive from the fiat NAV and are converted. An empty ledger makes a
// percentage budget zero, and the sizer turns that into a skip.
func (r *Runner) budget(ctx context.Context, opts Options, rate float64) (decimal.Decimal, error) {
	numer := core.Denomination(r.cfg.Allocation.Denomination) == core.DenomNumeraire

	fixed := 0.0
	switch {
	case opts.Budget > 0:
		fixed = opts.Budget
	case opts.Pct == 0 && r.cfg.Allocation.WeeklyPct == 0:
		fixed = r.cfg.Allocation.WeeklyBuy
	}
	if fixed > 0 {
		return decimal.NewFromFloat(fixed), nil
	}

	pct := opts.Pct
	if pct == 0 {
		pct = r.cfg.Allocation.WeeklyPct
	}
	nav, err := r.led.NAV(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	fiat := pct * nav
	if numer {
		return decimal.NewFromFloat(numeraire.Convert(fiat, rate)), nil
	}
	return decimal.NewFromFloat(fiat), nil
}

// adv10On returns the trailing 10-day average volume as of the decision
// date, 0 when the window has not filled yet.
func (r *Runner) adv10On(panel *core.PricePanel, ticker string, date time.Time) float64 {
	bars := panel.Bars[ticker]
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	adv := series.New(panel.Dates, vols).UpTo(date).RollingMean(adv10Window).Last()
	if adv != adv {
		return 0
	}
	return adv
}
