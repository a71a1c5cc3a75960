// Package ledger is the durable, append-only record of trades and derived
// positions. Trades are never updated or deleted; every booking appends one
// trade row and one position snapshot in a single transaction, so concurrent
// readers see either the old or the new NAV series, never a half-written one.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/metiseon/metiseon/internal/core"
)

// Ledger owns one sqlite connection, opened at startup and closed at
// shutdown. It is the only writer of the trades and positions tables.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if necessary) the ledger database at path.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, core.WrapError(core.ErrLedgerWrite, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrLedgerWrite, err)
	}
	return &Ledger{db: db}, nil
}

// Close releases the underlying connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// BookTrade appends a trade and its resulting position snapshot atomically.
// The new cost basis is the weighted average
// (prev_qty*prev_cost + qty*price + fee) / (prev_qty+qty), zero on full exit.
// Any failure aborts the whole booking; the caller must surface it because a
// lost write means the accounting record disagrees with reality.
func (l *Ledger) BookTrade(ctx context.Context, ts time.Time, ticker string, qty decimal.Decimal, price, fee float64) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return core.WrapError(core.ErrLedgerWrite, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO trades (ts, ticker, qty, price, fee) VALUES (?, ?, ?, ?, ?)`,
		ts, ticker, qty.String(), price, fee,
	); err != nil {
		return core.WrapError(core.ErrLedgerWrite, err)
	}

	prevQty := decimal.Zero
	prevCost := 0.0
	var qtyStr string
	err = tx.QueryRowContext(ctx,
		`SELECT qty, cost_basis FROM positions WHERE ticker = ? ORDER BY ts DESC LIMIT 1`,
		ticker,
	).Scan(&qtyStr, &prevCost)
	switch {
	case err == nil:
		prevQty, err = decimal.NewFromString(qtyStr)
		if err != nil {
			return core.WrapError(core.ErrLedgerWrite, fmt.Errorf("corrupt qty %q: %w", qtyStr, err))
		}
	case errors.Is(err, sql.ErrNoRows):
		// first trade for this ticker
	default:
		return core.WrapError(core.ErrLedgerWrite, err)
	}

	newQty := prevQty.Add(qty)
	newCost := 0.0
	if !newQty.IsZero() {
		prevQtyF, _ := prevQty.Float64()
		qtyF, _ := qty.Float64()
		newQtyF, _ := newQty.Float64()
		newCost = (prevQtyF*prevCost + qtyF*price + fee) / newQtyF
	}
	newQtyF, _ := newQty.Float64()
	nav := newQtyF * price

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO positions (ts, ticker, qty, cost_basis, nav) VALUES (?, ?, ?, ?, ?)`,
		ts, ticker, newQty.String(), newCost, nav,
	); err != nil {
		return core.WrapError(core.ErrLedgerWrite, err)
	}

	if err := tx.Commit(); err != nil {
		return core.WrapError(core.ErrLedgerWrite, err)
	}
	return nil
}

// NAV returns the fiat portfolio value: the sum over tickers of each
// ticker's most recent snapshot nav.
func (l *Ledger) NAV(ctx context.Context) (float64, error) {
	var nav sql.NullFloat64
	err := l.db.QueryRowContext(ctx, `
		SELECT SUM(nav) FROM (
			SELECT nav, ROW_NUMBER() OVER (PARTITION BY ticker ORDER BY ts DESC) AS r
			FROM positions
		) WHERE r = 1`,
	).Scan(&nav)
	if err != nil {
		return 0, core.WrapError(core.ErrLedgerWrite, err)
	}
	if !nav.Valid {
		return 0, nil
	}
	return nav.Float64, nil
}

// NAVInNumeraire revalues the latest holdings at current prices and converts
// to numeraire units at the given fiat-per-unit rate, in decimal arithmetic
// for exactness with the sizer's quantities.
func (l *Ledger) NAVInNumeraire(ctx context.Context, prices map[string]float64, numerairePrice float64) (decimal.Decimal, error) {
	if !(numerairePrice > 0) {
		return decimal.Zero, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("numeraire price %v", numerairePrice))
	}

	holdings, err := l.latestQuantities(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for ticker, qty := range holdings {
		price, ok := prices[ticker]
		if !ok {
			continue
		}
		total = total.Add(qty.Mul(decimal.NewFromFloat(price)))
	}
	return total.Div(decimal.NewFromFloat(numerairePrice)), nil
}

// latestQuantities returns the most recent position quantity per ticker.
func (l *Ledger) latestQuantities(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT ticker, qty FROM (
			SELECT ticker, qty, ROW_NUMBER() OVER (PARTITION BY ticker ORDER BY ts DESC) AS r
			FROM positions
		) WHERE r = 1`,
	)
	if err != nil {
		return nil, core.WrapError(core.ErrLedgerWrite, err)
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var ticker, qtyStr string
		if err := rows.Scan(&ticker, &qtyStr); err != nil {
			return nil, core.WrapError(core.ErrLedgerWrite, err)
		}
		qty, err := decimal.NewFromString(qtyStr)
		if err != nil {
			return nil, core.WrapError(core.ErrLedgerWrite, fmt.Errorf("corrupt qty %q: %w", qtyStr, err))
		}
		out[ticker] = qty
	}
	return out, rows.Err()
}

// LastTicker returns the ticker of the most recent trade, feeding the
// selector's consecutive-winner exclusion. ok is false on an empty ledger.
func (l *Ledger) LastTicker(ctx context.Context) (ticker string, ok bool, err error) {
	err = l.db.QueryRowContext(ctx,
		`SELECT ticker FROM trades ORDER BY ts DESC LIMIT 1`,
	).Scan(&ticker)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, core.WrapError(core.ErrLedgerWrite, err)
	}
	return ticker, true, nil
}

// NAVPoint is one observation of the equity curve.
type NAVPoint struct {
	Date time.Time
	NAV  float64
}

// NAVHistory returns the portfolio value after each booking, in time order:
// one point per snapshot timestamp, valuing every ticker at its latest
// snapshot as of that moment. Snapshot rows carry per-ticker figures, so the
// curve is the running sum of the latest row per ticker, not the raw rows.
func (l *Ledger) NAVHistory(ctx context.Context) ([]NAVPoint, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT ts, ticker, nav FROM positions ORDER BY ts`)
	if err != nil {
		return nil, core.WrapError(core.ErrLedgerWrite, err)
	}
	defer rows.Close()

	latest := make(map[string]float64)
	var out []NAVPoint
	for rows.Next() {
		var (
			ts     time.Time
			ticker string
			nav    float64
		)
		if err := rows.Scan(&ts, &ticker, &nav); err != nil {
			return nil, core.WrapError(core.ErrLedgerWrite, err)
		}
		latest[ticker] = nav

		total := 0.0
		for _, v := range latest {
			total += v
		}
		if n := len(out); n > 0 && out[n-1].Date.Equal(ts) {
			out[n-1].NAV = total
		} else {
			out = append(out, NAVPoint{Date: ts, NAV: total})
		}
	}
	return out, rows.Err()
}
