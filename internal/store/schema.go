package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS plans (
    plan_id              TEXT PRIMARY KEY,
    destination          TEXT NOT NULL,
    status               TEXT NOT NULL,
    total_budget         REAL NOT NULL,
    current_amount       REAL NOT NULL DEFAULT 0,
    progress             INTEGER NOT NULL DEFAULT 0,
    num_people           INTEGER NOT NULL,
    departure_date       TEXT NOT NULL,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL,
    snapshot             TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS plan_events (
    event_id             INTEGER PRIMARY KEY AUTOINCREMENT,
    plan_id              TEXT NOT NULL REFERENCES plans(plan_id) ON DELETE CASCADE,
    seq                  INTEGER NOT NULL,
    type                 TEXT NOT NULL,
    at                   TEXT NOT NULL,
    payload              TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plans_status ON plans(status);
CREATE INDEX IF NOT EXISTS idx_plan_events_plan ON plan_events(plan_id, event_id);
`
