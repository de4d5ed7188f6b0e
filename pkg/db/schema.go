package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per evaluation of a prediction file against a ground truth file
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_uuid TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    pred_path TEXT NOT NULL,
    gt_path TEXT NOT NULL,
    matched_count INTEGER NOT NULL,
    pred_only_count INTEGER DEFAULT 0,
    gt_only_count INTEGER DEFAULT 0,
    failed_count INTEGER DEFAULT 0,
    avg_teds REAL NOT NULL,        -- structure only
    avg_ted REAL NOT NULL,         -- full table
    clamped BOOLEAN DEFAULT 0,
    workers INTEGER,
    duration_ms INTEGER
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

-- Pair scores: per-pair results within a run
CREATE TABLE IF NOT EXISTS pair_scores (
    score_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    pair_key TEXT NOT NULL,
    structure_score REAL NOT NULL,
    full_score REAL NOT NULL,
    error_type TEXT,
    error_message TEXT,
    content_hash TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, pair_key)
);

CREATE INDEX IF NOT EXISTS idx_pair_scores_run ON pair_scores(run_id);
CREATE INDEX IF NOT EXISTS idx_pair_scores_error ON pair_scores(error_type) WHERE error_type IS NOT NULL;
`
