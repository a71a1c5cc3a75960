package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metiseon/metiseon/internal/core"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func ts(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func TestBookTrade_RoundTrip(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.BookTrade(ctx, ts(1), "AAA", decimal.NewFromInt(1), 10, 0))
	require.NoError(t, l.BookTrade(ctx, ts(2), "BBB", decimal.NewFromInt(2), 20, 0))

	nav, err := l.NAV(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50.0, nav)

	numNAV, err := l.NAVInNumeraire(ctx, map[string]float64{"AAA": 10, "BBB": 20}, 10)
	require.NoError(t, err)
	assert.True(t, numNAV.Equal(decimal.NewFromInt(5)), "got %s", numNAV)
}

func TestBookTrade_WeightedAverageCostBasis(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.BookTrade(ctx, ts(1), "AAA", decimal.NewFromInt(10), 10, 0))
	require.NoError(t, l.BookTrade(ctx, ts(2), "AAA", decimal.NewFromInt(10), 20, 0))

	var cost float64
	var qty string
	err := l.db.QueryRow(
		`SELECT qty, cost_basis FROM positions WHERE ticker = 'AAA' ORDER BY ts DESC LIMIT 1`,
	).Scan(&qty, &cost)
	require.NoError(t, err)
	assert.Equal(t, "20", qty)
	assert.InDelta(t, 15.0, cost, 1e-12)

	nav, err := l.NAV(ctx)
	require.NoError(t, err)
	assert.Equal(t, 400.0, nav, "nav uses the latest snapshot only")
}

func TestBookTrade_FeeEntersCostBasis(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.BookTrade(ctx, ts(1), "AAA", decimal.NewFromInt(10), 10, 5))

	var cost float64
	require.NoError(t, l.db.QueryRow(
		`SELECT cost_basis FROM positions WHERE ticker = 'AAA'`,
	).Scan(&cost))
	assert.InDelta(t, 10.5, cost, 1e-12)
}

func TestBookTrade_FullExitZeroCostBasis(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.BookTrade(ctx, ts(1), "AAA", decimal.NewFromInt(5), 10, 0))
	require.NoError(t, l.BookTrade(ctx, ts(2), "AAA", decimal.NewFromInt(-5), 12, 0))

	var cost float64
	var qty string
	require.NoError(t, l.db.QueryRow(
		`SELECT qty, cost_basis FROM positions WHERE ticker = 'AAA' ORDER BY ts DESC LIMIT 1`,
	).Scan(&qty, &cost))
	assert.Equal(t, "0", qty)
	assert.Zero(t, cost, "full exit must not divide by zero")
}

func TestBookTrade_DuplicateAborted(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.BookTrade(ctx, ts(1), "AAA", decimal.NewFromInt(1), 10, 0))

	err := l.BookTrade(ctx, ts(1), "AAA", decimal.NewFromInt(1), 11, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrLedgerWrite))

	// The failed booking must leave no partial position snapshot behind.
	var n int
	require.NoError(t, l.db.QueryRow(`SELECT COUNT(*) FROM positions`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestNAV_EmptyLedger(t *testing.T) {
	l := openTestLedger(t)
	nav, err := l.NAV(context.Background())
	require.NoError(t, err)
	assert.Zero(t, nav)
}

func TestNAV_Idempotent(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	require.NoError(t, l.BookTrade(ctx, ts(1), "AAA", decimal.NewFromInt(3), 7, 0))

	first, err := l.NAV(ctx)
	require.NoError(t, err)
	second, err := l.NAV(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNAVInNumeraire_BadRate(t *testing.T) {
	l := openTestLedger(t)
	_, err := l.NAVInNumeraire(context.Background(), nil, 0)
	assert.Error(t, err)
}

func TestLastTicker(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	_, ok, err := l.LastTicker(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty ledger has no last ticker")

	require.NoError(t, l.BookTrade(ctx, ts(1), "AAA", decimal.NewFromInt(1), 10, 0))
	require.NoError(t, l.BookTrade(ctx, ts(5), "BBB", decimal.NewFromInt(1), 10, 0))

	ticker, ok, err := l.LastTicker(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "BBB", ticker)
}

func TestNAVHistory(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.BookTrade(ctx, ts(1), "AAA", decimal.NewFromInt(1), 10, 0))
	require.NoError(t, l.BookTrade(ctx, ts(8), "AAA", decimal.NewFromInt(1), 12, 0))

	hist, err := l.NAVHistory(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.True(t, hist[0].Date.Before(hist[1].Date))
	assert.Equal(t, 10.0, hist[0].NAV)
	assert.Equal(t, 24.0, hist[1].NAV)
}

func TestNAVHistory_SumsAcrossTickers(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.BookTrade(ctx, ts(1), "AAA", decimal.NewFromInt(1), 10, 0))
	require.NoError(t, l.BookTrade(ctx, ts(8), "BBB", decimal.NewFromInt(2), 20, 0))

	hist, err := l.NAVHistory(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, 10.0, hist[0].NAV)
	// The second point is the whole portfolio, not BBB's snapshot alone.
	assert.Equal(t, 50.0, hist[1].NAV)

	nav, err := l.NAV(ctx)
	require.NoError(t, err)
	assert.Equal(t, nav, hist[len(hist)-1].NAV, "curve must end at the live NAV")

	// A later top-up of AAA revalues AAA's leg while BBB's stands.
	require.NoError(t, l.BookTrade(ctx, ts(15), "AAA", decimal.NewFromInt(1), 14, 0))
	hist, err = l.NAVHistory(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, 68.0, hist[2].NAV) // 2*14 + 2*20
}
