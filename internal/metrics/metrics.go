package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	decisionsTotal    *prometheus.CounterVec
	tradesBooked      prometheus.Counter
	portfolioNAV      prometheus.Gauge
	riskFitFailures   prometheus.Counter
	collectorRequests *prometheus.CounterVec
	runDuration       prometheus.Histogram
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metiseon_decisions_total",
				Help: "Total number of weekly decisions by outcome",
			},
			[]string{"outcome"},
		),
		tradesBooked: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "metiseon_trades_booked_total",
				Help: "Total number of trades written to the ledger",
			},
		),
		portfolioNAV: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "metiseon_portfolio_nav",
				Help: "Latest portfolio net asset value in the fiat currency",
			},
		),
		riskFitFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "metiseon_risk_fit_failures_total",
				Help: "Total number of volatility model fits that fell back or failed",
			},
		),
		collectorRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metiseon_collector_requests_total",
				Help: "Total number of collector fetches by source and status",
			},
			[]string{"collector", "status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "metiseon_run_duration_seconds",
				Help:    "Backtest or trade run duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
	}

	reg.MustRegister(r.decisionsTotal)
	reg.MustRegister(r.tradesBooked)
	reg.MustRegister(r.portfolioNAV)
	reg.MustRegister(r.riskFitFailures)
	reg.MustRegister(r.collectorRequests)
	reg.MustRegister(r.runDuration)

	return r
}

// RecordDecision records one weekly decision outcome.
func (r *Registry) RecordDecision(outcome string) {
	r.decisionsTotal.WithLabelValues(outcome).Inc()
}

// RecordTrade records a ledger booking.
func (r *Registry) RecordTrade() {
	r.tradesBooked.Inc()
}

// SetNAV sets the latest portfolio value.
func (r *Registry) SetNAV(nav float64) {
	r.portfolioNAV.Set(nav)
}

// RecordRiskFitFailure records a volatility fit failure.
func (r *Registry) RecordRiskFitFailure() {
	r.riskFitFailures.Inc()
}

// RecordCollectorRequest records a collector fetch result.
func (r *Registry) RecordCollectorRequest(collector, status string) {
	r.collectorRequests.WithLabelValues(collector, status).Inc()
}

// RecordRunDuration records how long a full run took.
func (r *Registry) RecordRunDuration(seconds float64) {
	r.runDuration.Observe(seconds)
}
