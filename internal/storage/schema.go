package storage

const schema = `
-- The 'cards' table holds one row per reviewed item: its full scheduling state.
CREATE TABLE IF NOT EXISTS cards (
    item_id TEXT PRIMARY KEY,
    repetitions INTEGER NOT NULL,
    interval_days INTEGER NOT NULL,
    ease_factor REAL NOT NULL,
    due_at DATETIME NOT NULL,
    last_reviewed_at DATETIME
);

-- The 'sessions' table is an append-only log of finished practice sittings.
CREATE TABLE IF NOT EXISTS sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at DATETIME NOT NULL,
    ended_at DATETIME NOT NULL,
    questions_reviewed INTEGER NOT NULL,
    correct_answers INTEGER NOT NULL,
    incorrect_answers INTEGER NOT NULL
);

-- The 'totals' table is a single row of running counters.
CREATE TABLE IF NOT EXISTS totals (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    questions_reviewed INTEGER NOT NULL DEFAULT 0,
    correct_answers INTEGER NOT NULL DEFAULT 0,
    incorrect_answers INTEGER NOT NULL DEFAULT 0
);
INSERT OR IGNORE INTO totals (id) VALUES (1);
`
