package ledger

// Quantities are stored as decimal strings so the sizer's 4-place fixed-point
// arithmetic round-trips exactly. Prices and derived float figures are REAL.
const schema = `
CREATE TABLE IF NOT EXISTS trades (
	ts DATETIME NOT NULL,
	ticker TEXT NOT NULL,
	qty TEXT NOT NULL,
	price REAL NOT NULL,
	fee REAL NOT NULL,
	PRIMARY KEY (ts, ticker)
);

CREATE TABLE IF NOT EXISTS positions (
	ts DATETIME NOT NULL,
	ticker TEXT NOT NULL,
	qty TEXT NOT NULL,
	cost_basis REAL NOT NULL,
	nav REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_positions_ticker_ts ON positions(ticker, ts);
`
