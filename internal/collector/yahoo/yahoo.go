// Package yahoo fetches daily adjusted bars from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/metiseon/metiseon/internal/collector"
	"github.com/metiseon/metiseon/internal/core"
)

const baseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// validSymbol matches equity tickers plus the =X fx pair suffix.
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9^.\-]{1,12}(=X)?$`)

// Yahoo implements collector.PriceCollector.
type Yahoo struct {
	client *http.Client
	cache  *collector.Cache
}

// New creates a Yahoo collector. cache may be nil to disable caching.
func New(cache *collector.Cache) *Yahoo {
	return &Yahoo{
		client: &http.Client{Timeout: 10 * time.Second},
		cache:  cache,
	}
}

func (y *Yahoo) Name() string { return "yahoo" }

func (y *Yahoo) Init(cfg collector.Config) error { return nil }

// FetchBars fetches daily adjusted close and volume for [start, end).
func (y *Yahoo) FetchBars(ctx context.Context, ticker string, start, end time.Time) ([]core.Bar, error) {
	if !validSymbol.MatchString(ticker) {
		return nil, fmt.Errorf("invalid symbol format: %s", ticker)
	}

	key := fmt.Sprintf("yahoo:%s:%d:%d", ticker, start.Unix(), end.Unix())
	if y.cache != nil {
		if v, ok := y.cache.Get(key); ok {
			return v.([]core.Bar), nil
		}
	}

	url := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		baseURL, ticker, start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := y.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, err)
	}
	bars, err := result.bars()
	if err != nil {
		return nil, err
	}

	if y.cache != nil {
		y.cache.Set(key, bars)
	}
	return bars, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				Adjclose []struct {
					Adjclose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (r chartResponse) bars() ([]core.Bar, error) {
	if r.Chart.Error != nil {
		return nil, core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("%s: %s", r.Chart.Error.Code, r.Chart.Error.Description))
	}
	if len(r.Chart.Result) == 0 {
		return nil, core.ErrNoData
	}
	res := r.Chart.Result[0]
	if len(res.Indicators.Adjclose) == 0 || len(res.Indicators.Quote) == 0 {
		return nil, core.ErrNoData
	}
	adj := res.Indicators.Adjclose[0].Adjclose
	vol := res.Indicators.Quote[0].Volume

	var bars []core.Bar
	for i, ts := range res.Timestamp {
		if i >= len(adj) || adj[i] == nil {
			continue
		}
		b := core.Bar{
			Date:     time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			AdjClose: *adj[i],
		}
		if i < len(vol) && vol[i] != nil {
			b.Volume = *vol[i]
		}
		bars = append(bars, b)
	}
	return bars, nil
}
