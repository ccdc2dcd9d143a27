package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Runs: one row per completed rewrite pass
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT,
    hostname TEXT,
    currency_code TEXT NOT NULL,
    usd_factor REAL NOT NULL,
    classification_signal TEXT,
    classification_confidence REAL,
    page_language TEXT,
    rate_btc_usd REAL NOT NULL,
    rate_source TEXT NOT NULL,          -- live, fallback
    tokens_found INTEGER NOT NULL DEFAULT 0,
    tokens_converted INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_hostname ON runs(hostname);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

-- Conversions: one row per converted token in a run
CREATE TABLE IF NOT EXISTS conversions (
    conversion_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    original TEXT NOT NULL,
    display TEXT NOT NULL,
    satoshis INTEGER NOT NULL,
    unit TEXT NOT NULL,                 -- sats, btc
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_conversions_run ON conversions(run_id);
`
