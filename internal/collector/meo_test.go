package collector

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/metiseon/metiseon/internal/core"
	"github.com/metiseon/metiseon/internal/series"
)

type fakeSeries struct {
	byCode map[string]series.Series
}

func (f *fakeSeries) Name() string          { return "fake" }
func (f *fakeSeries) Init(cfg Config) error { return nil }

func (f *fakeSeries) FetchSeries(ctx context.Context, code string, start, end time.Time) (series.Series, error) {
	s, ok := f.byCode[code]
	if !ok {
		return series.Series{}, core.ErrNoData
	}
	return s, nil
}

type fakeCaps struct {
	caps map[string]float64
	err  error
}

func (f *fakeCaps) Name() string          { return "fake" }
func (f *fakeCaps) Init(cfg Config) error { return nil }

func (f *fakeCaps) FetchMarketCaps(ctx context.Context, ids []string) (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.caps, nil
}

func singlePoint(d time.Time, v float64) series.Series {
	return series.New([]time.Time{d}, []float64{v})
}

func TestFetchNumeraireComponents(t *testing.T) {
	asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	fresh := asOf.AddDate(0, 0, -10)

	monetary := &fakeSeries{byCode: map[string]series.Series{
		"M2SL":       singlePoint(fresh, 21_000), // USD M2, billions
		goldSeries:   singlePoint(fresh, 2_300),  // USD/oz
		silverSeries: singlePoint(fresh, 29),
	}}
	fx := &fakePrices{bars: map[string][]core.Bar{}}
	caps := &fakeCaps{caps: map[string]float64{
		"bitcoin":  1.2e12,
		"ethereum": 4.0e11,
	}}

	components, mWorld, err := FetchNumeraireComponents(context.Background(), monetary, fx, caps, asOf, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bySymbol := make(map[string]float64)
	var total float64
	for _, c := range components {
		bySymbol[c.Symbol] = c.Weight
		total += c.Weight
	}
	// USD M2, gold, silver, bitcoin, ethereum. The non-USD fiats have no
	// monetary series wired in, so they are skipped, not zeroed.
	if len(components) != 5 {
		t.Fatalf("expected 5 components, got %d: %v", len(components), bySymbol)
	}
	if math.Abs(total-1) > 1e-12 {
		t.Errorf("weights should sum to 1, got %v", total)
	}
	if mWorld <= 0 {
		t.Errorf("expected positive world money stock, got %v", mWorld)
	}
	if bySymbol["USD"] <= bySymbol["ethereum"] {
		t.Error("USD M2 should outweigh ethereum's cap")
	}

	goldMC := goldStockT * ozPerTonne * 2_300 / 1e9
	if math.Abs(bySymbol["XAU"]-goldMC/mWorld) > 1e-12 {
		t.Errorf("gold weight mismatch: got %v", bySymbol["XAU"])
	}
}

func TestFetchNumeraireComponentsStaleSkipped(t *testing.T) {
	asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	stale := asOf.AddDate(0, 0, -75) // inside lookback, older than staleAfter

	monetary := &fakeSeries{byCode: map[string]series.Series{
		"M2SL":     singlePoint(stale, 21_000),
		goldSeries: singlePoint(asOf.AddDate(0, 0, -5), 2_300),
	}}

	components, _, err := FetchNumeraireComponents(context.Background(), monetary, &fakePrices{}, nil, asOf, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(components) != 1 || components[0].Symbol != "XAU" {
		t.Fatalf("expected only fresh gold to survive, got %v", components)
	}
	if components[0].Weight != 1 {
		t.Errorf("sole component should carry full weight, got %v", components[0].Weight)
	}
}

func TestFetchNumeraireComponentsEmpty(t *testing.T) {
	monetary := &fakeSeries{byCode: map[string]series.Series{}}
	_, _, err := FetchNumeraireComponents(context.Background(), monetary, &fakePrices{}, nil, time.Now(), nil)
	if !errors.Is(err, ErrNoComponents) {
		t.Errorf("expected ErrNoComponents, got %v", err)
	}
}
