// Package report renders the weekly run summary as a static HTML page with
// an inline SVG equity curve, and archives it by run date.
package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/metiseon/metiseon/internal/ledger"
	"github.com/metiseon/metiseon/internal/storage/archive"
)

const (
	chartWidth  = 720
	chartHeight = 240
	chartPad    = 12
)

// Summary is everything the page shows besides the curve.
type Summary struct {
	RunDate      time.Time
	RunID        string
	Ticker       string // winner, empty when skipped
	Outcome      string
	Qty          string
	Price        float64
	FeeBP        float64
	SlippageBP   float64
	Score        float64
	Sigma        float64
	NAV          float64
	NAVNumer     float64
	Denomination string
}

// Renderer builds and archives report pages.
type Renderer struct {
	store     archive.Storage
	latestKey string // stable alias key, empty disables it
	log       *zap.Logger
}

// NewRenderer creates a renderer writing through the given archive. When
// latestKey is non-empty every render also overwrites that key, giving
// dashboards a stable URL for the newest page.
func NewRenderer(store archive.Storage, latestKey string, log *zap.Logger) *Renderer {
	return &Renderer{store: store, latestKey: latestKey, log: log}
}

// Render writes the report for a run and returns its archive key.
func (r *Renderer) Render(ctx context.Context, sum Summary, curve []ledger.NAVPoint) (string, error) {
	page, err := buildPage(sum, curve)
	if err != nil {
		return "", err
	}
	key := archive.ReportKey(sum.RunDate)
	if err := r.store.Write(ctx, key, page); err != nil {
		return "", fmt.Errorf("archiving report: %w", err)
	}
	if r.latestKey != "" {
		if err := r.store.Write(ctx, r.latestKey, page); err != nil {
			r.log.Warn("latest report alias not updated", zap.Error(err))
		}
	}
	r.log.Info("report archived",
		zap.String("key", key),
		zap.Int("bytes", len(page)),
	)
	return key, nil
}

var pageTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>metiseon {{.RunDate}}</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 760px; margin: 2em auto; color: #1a1a2e; }
h1 { font-size: 1.3em; }
table { border-collapse: collapse; margin: 1em 0; }
td, th { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
.skip { color: #a33; }
.ok { color: #2a7; }
</style>
</head>
<body>
<h1>metiseon weekly run &mdash; {{.RunDate}}</h1>
<p>run <code>{{.RunID}}</code></p>
<table>
<tr><th>outcome</th><td class="{{.OutcomeClass}}">{{.Outcome}}</td></tr>
{{if .Ticker}}<tr><th>asset</th><td>{{.Ticker}}</td></tr>
<tr><th>quantity</th><td>{{.Qty}} @ {{printf "%.2f" .Price}}</td></tr>
<tr><th>durability score</th><td>{{printf "%.0f" .Score}}</td></tr>
<tr><th>sigma</th><td>{{printf "%.4f" .Sigma}}</td></tr>
<tr><th>cost</th><td>{{printf "%.1f" .FeeBP}} bp fee + {{printf "%.1f" .SlippageBP}} bp slippage</td></tr>{{end}}
<tr><th>NAV</th><td>{{printf "%.2f" .NAV}}{{if .NAVNumer}} ({{printf "%.6f" .NAVNumer}} {{.Denomination}}){{end}}</td></tr>
</table>
{{.Chart}}
</body>
</html>
`))

type pageData struct {
	RunDate      string
	RunID        string
	Ticker       string
	Outcome      string
	OutcomeClass string
	Qty          string
	Price        float64
	FeeBP        float64
	SlippageBP   float64
	Score        float64
	Sigma        float64
	NAV          float64
	NAVNumer     float64
	Denomination string
	Chart        template.HTML
}

func buildPage(sum Summary, curve []ledger.NAVPoint) ([]byte, error) {
	cls := "ok"
	if strings.HasPrefix(sum.Outcome, "skipped") {
		cls = "skip"
	}
	data := pageData{
		RunDate:      sum.RunDate.Format("2006-01-02"),
		RunID:        sum.RunID,
		Ticker:       sum.Ticker,
		Outcome:      sum.Outcome,
		OutcomeClass: cls,
		Qty:          sum.Qty,
		Price:        sum.Price,
		FeeBP:        sum.FeeBP,
		SlippageBP:   sum.SlippageBP,
		Score:        sum.Score,
		Sigma:        sum.Sigma,
		NAV:          sum.NAV,
		NAVNumer:     sum.NAVNumer,
		Denomination: sum.Denomination,
		Chart:        template.HTML(equityCurveSVG(curve)),
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// equityCurveSVG draws the NAV history as a polyline. Fewer than two points
// is not a curve, so it renders a placeholder instead.
func equityCurveSVG(curve []ledger.NAVPoint) string {
	if len(curve) < 2 {
		return "<p>not enough history for an equity curve yet</p>"
	}

	lo, hi := curve[0].NAV, curve[0].NAV
	for _, p := range curve {
		lo = math.Min(lo, p.NAV)
		hi = math.Max(hi, p.NAV)
	}
	if hi == lo {
		hi = lo + 1
	}
	t0 := curve[0].Date
	span := curve[len(curve)-1].Date.Sub(t0)
	if span <= 0 {
		span = time.Hour
	}

	var pts strings.Builder
	for i, p := range curve {
		x := chartPad + (chartWidth-2*chartPad)*p.Date.Sub(t0).Seconds()/span.Seconds()
		y := chartHeight - chartPad - (chartHeight-2*chartPad)*(p.NAV-lo)/(hi-lo)
		if i > 0 {
			pts.WriteByte(' ')
		}
		fmt.Fprintf(&pts, "%.1f,%.1f", x, y)
	}

	return fmt.Sprintf(
		`<svg width="%d" height="%d" viewBox="0 0 %d %d" role="img">`+
			`<rect width="%d" height="%d" fill="#fafafa" stroke="#ccc"/>`+
			`<polyline points="%s" fill="none" stroke="#2a7" stroke-width="1.5"/>`+
			`<text x="%d" y="%d" font-size="10" fill="#888">%.2f</text>`+
			`<text x="%d" y="%d" font-size="10" fill="#888">%.2f</text>`+
			`</svg>`,
		chartWidth, chartHeight, chartWidth, chartHeight,
		chartWidth, chartHeight,
		pts.String(),
		chartPad+2, chartPad+8, hi,
		chartPad+2, chartHeight-chartPad-2, lo,
	)
}
