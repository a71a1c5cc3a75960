package allocate

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSlippageBP(t *testing.T) {
	// qty == adv10: 10000 * 0.001 * sqrt(1) = 10bp
	got := SlippageBP(decimal.NewFromInt(100), 100)
	assert.InDelta(t, 10.0, got, 1e-9)
}

func TestSlippageBP_NoLiquidityData(t *testing.T) {
	assert.Zero(t, SlippageBP(decimal.NewFromInt(100), 0))
	assert.Zero(t, SlippageBP(decimal.NewFromInt(100), -1))
	assert.Zero(t, SlippageBP(decimal.NewFromInt(100), math.NaN()))
}

func TestAllow_CapBoundary(t *testing.T) {
	qty := decimal.NewFromInt(100)
	// fee 12 + slip 10 = 22 <= 35
	assert.True(t, Allow(qty, 100, 12, 35))
	// exactly at the cap is allowed
	assert.True(t, Allow(qty, 100, 25, 35))
	// just above is not
	assert.False(t, Allow(qty, 100, 25.01, 35))
}

func TestAllow_MonotoneInQuantity(t *testing.T) {
	adv10 := 50.0
	prev := true
	for q := 1; q <= 10000; q *= 10 {
		ok := Allow(decimal.NewFromInt(int64(q)), adv10, 12, 35)
		if !prev {
			assert.False(t, ok, "allow must be non-increasing in quantity (q=%d)", q)
		}
		prev = ok
	}
}

func TestAllow_MonotoneInADV(t *testing.T) {
	qty := decimal.NewFromInt(500)
	prev := false
	for _, adv := range []float64{1, 10, 100, 1000, 1e6} {
		ok := Allow(qty, adv, 12, 35)
		if prev {
			assert.True(t, ok, "allow must be non-decreasing in adv10 (adv=%f)", adv)
		}
		prev = ok
	}
}
