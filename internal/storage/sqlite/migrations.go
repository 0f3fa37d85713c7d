package sqlite

import (
	"context"
	"database/sql"
)

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: settlement_sessions must be created BEFORE payments because
// payments.settlement_id references it.
//
// Dates are TEXT "YYYY-MM-DD"; timestamps are INTEGER Unix seconds.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    joined_at INTEGER NOT NULL,
    PRIMARY KEY (group_id, user_id),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settlement_sessions (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    period_start TEXT NOT NULL,
    period_end TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('draft', 'pending_payment', 'settled')),
    created_by TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    confirmed_by TEXT,
    confirmed_at INTEGER,
    net_transfers TEXT,
    is_zero_settlement INTEGER NOT NULL DEFAULT 0,
    payment_reported_by TEXT,
    payment_reported_at INTEGER,
    settled_by TEXT,
    settled_at INTEGER,
    CHECK (period_start <= period_end),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    payer_id TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount > 0),
    description TEXT NOT NULL,
    category_id TEXT,
    payment_date TEXT NOT NULL,
    settlement_id TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE,
    FOREIGN KEY (settlement_id) REFERENCES settlement_sessions(id)
);

CREATE TABLE IF NOT EXISTS payment_splits (
    payment_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount >= 0),
    PRIMARY KEY (payment_id, user_id),
    FOREIGN KEY (payment_id) REFERENCES payments(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS recurring_rules (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    description TEXT NOT NULL,
    category_id TEXT,
    default_amount INTEGER CHECK (default_amount IS NULL OR default_amount > 0),
    is_variable INTEGER NOT NULL DEFAULT 0,
    day_of_month INTEGER NOT NULL CHECK (day_of_month BETWEEN 1 AND 31),
    interval_months INTEGER NOT NULL CHECK (interval_months >= 1),
    default_payer_id TEXT NOT NULL,
    split_type TEXT NOT NULL CHECK (split_type IN ('equal', 'custom')),
    is_active INTEGER NOT NULL DEFAULT 1,
    start_date TEXT NOT NULL,
    end_date TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS rule_splits (
    rule_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    user_id TEXT NOT NULL,
    amount INTEGER,
    percentage TEXT,
    PRIMARY KEY (rule_id, position),
    FOREIGN KEY (rule_id) REFERENCES recurring_rules(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settlement_entries (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    rule_id TEXT,
    source_payment_id TEXT,
    description TEXT NOT NULL,
    category_id TEXT,
    expected_amount INTEGER,
    actual_amount INTEGER CHECK (actual_amount IS NULL OR actual_amount > 0),
    payer_id TEXT NOT NULL,
    payment_date TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('pending', 'filled', 'skipped')),
    split_type TEXT NOT NULL CHECK (split_type IN ('equal', 'custom')),
    entry_type TEXT NOT NULL CHECK (entry_type IN ('rule', 'manual', 'existing')),
    filled_by TEXT,
    filled_at INTEGER,
    created_at INTEGER NOT NULL,
    CHECK (status <> 'skipped' OR actual_amount IS NULL),
    FOREIGN KEY (session_id) REFERENCES settlement_sessions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS entry_splits (
    entry_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount >= 0),
    PRIMARY KEY (entry_id, user_id),
    FOREIGN KEY (entry_id) REFERENCES settlement_entries(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id);
CREATE INDEX IF NOT EXISTS idx_payments_group_unsettled ON payments(group_id, payment_date) WHERE settlement_id IS NULL;
CREATE INDEX IF NOT EXISTS idx_payments_settlement_id ON payments(settlement_id);
CREATE INDEX IF NOT EXISTS idx_recurring_rules_group_id ON recurring_rules(group_id);
CREATE INDEX IF NOT EXISTS idx_settlement_sessions_group_id ON settlement_sessions(group_id);
CREATE INDEX IF NOT EXISTS idx_settlement_entries_session_id ON settlement_entries(session_id);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
