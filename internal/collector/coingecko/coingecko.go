// Package coingecko fetches crypto market capitalizations from CoinGecko.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/metiseon/metiseon/internal/collector"
	"github.com/metiseon/metiseon/internal/core"
)

const baseURL = "https://api.coingecko.com/api/v3/coins/markets"

// CoinGecko implements collector.CryptoCapsCollector. No API key is
// required for the public endpoint.
type CoinGecko struct {
	client *http.Client
	cache  *collector.Cache
}

// New creates a CoinGecko collector. cache may be nil to disable caching.
func New(cache *collector.Cache) *CoinGecko {
	return &CoinGecko{
		client: &http.Client{Timeout: 10 * time.Second},
		cache:  cache,
	}
}

func (c *CoinGecko) Name() string { return "coingecko" }

func (c *CoinGecko) Init(cfg collector.Config) error { return nil }

// FetchMarketCaps fetches current USD market caps for the given coin ids.
// Ids absent from the response are absent from the result map.
func (c *CoinGecko) FetchMarketCaps(ctx context.Context, ids []string) (map[string]float64, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	key := "coingecko:" + strings.Join(sorted, ",")
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v.(map[string]float64), nil
		}
	}

	url := fmt.Sprintf("%s?vs_currency=usd&ids=%s", baseURL, strings.Join(sorted, "%2C"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var result []struct {
		ID        string  `json:"id"`
		MarketCap float64 `json:"market_cap"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, err)
	}

	caps := make(map[string]float64, len(result))
	for _, r := range result {
		if r.MarketCap > 0 {
			caps[r.ID] = r.MarketCap
		}
	}
	if len(caps) == 0 {
		return nil, core.ErrNoData
	}

	if c.cache != nil {
		c.cache.Set(key, caps)
	}
	return caps, nil
}
