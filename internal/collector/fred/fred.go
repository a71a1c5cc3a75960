// Package fred fetches macro observation series from the FRED API.
package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/metiseon/metiseon/internal/collector"
	"github.com/metiseon/metiseon/internal/core"
	"github.com/metiseon/metiseon/internal/series"
)

const baseURL = "https://api.stlouisfed.org/fred/series/observations"

// FRED implements collector.SeriesCollector.
type FRED struct {
	apiKey string
	client *http.Client
	cache  *collector.Cache
}

// New creates a FRED collector. cache may be nil to disable caching.
func New(cache *collector.Cache) *FRED {
	return &FRED{
		client: &http.Client{Timeout: 10 * time.Second},
		cache:  cache,
	}
}

func (f *FRED) Name() string { return "fred" }

func (f *FRED) Init(cfg collector.Config) error {
	if cfg.APIKey == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("fred requires an api_key"))
	}
	f.apiKey = cfg.APIKey
	return nil
}

// FetchSeries fetches observations for seriesID within [start, end).
// Missing observations (FRED reports them as ".") are skipped.
func (f *FRED) FetchSeries(ctx context.Context, seriesID string, start, end time.Time) (series.Series, error) {
	key := fmt.Sprintf("fred:%s:%s:%s", seriesID, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if f.cache != nil {
		if v, ok := f.cache.Get(key); ok {
			return v.(series.Series), nil
		}
	}

	url := fmt.Sprintf("%s?series_id=%s&api_key=%s&file_type=json&observation_start=%s&observation_end=%s",
		baseURL, seriesID, f.apiKey, start.Format("2006-01-02"), end.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return series.Series{}, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return series.Series{}, core.WrapError(core.ErrCollectorFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return series.Series{}, core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var result struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return series.Series{}, core.WrapError(core.ErrCollectorFailed, err)
	}

	var dates []time.Time
	var values []float64
	for _, o := range result.Observations {
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		d, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			continue
		}
		dates = append(dates, d)
		values = append(values, v)
	}
	if len(dates) == 0 {
		return series.Series{}, core.ErrNoData
	}
	s := series.New(dates, values)

	if f.cache != nil {
		f.cache.Set(key, s)
	}
	return s, nil
}
