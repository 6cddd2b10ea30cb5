package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates every table the store needs. Safe to call on every
// start: all statements use IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Votes, transactions and history carry no foreign keys: they outlive the
// competitions and contestants they reference.
const schema = `
CREATE TABLE IF NOT EXISTS competitions (
    seq BIGSERIAL UNIQUE,
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    cover_image TEXT NOT NULL,
    start_date TIMESTAMPTZ NOT NULL,
    end_date TIMESTAMPTZ NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('draft', 'active', 'ended')),
    max_votes_per_user INTEGER NOT NULL CHECK (max_votes_per_user >= 1),
    require_payment BOOLEAN NOT NULL DEFAULT FALSE,
    vote_price NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (vote_price >= 0),
    total_votes BIGINT NOT NULL DEFAULT 0,
    total_contestants BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_competitions_status ON competitions(status);

CREATE TABLE IF NOT EXISTS contestants (
    seq BIGSERIAL UNIQUE,
    id TEXT PRIMARY KEY,
    competition_id TEXT NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT NOT NULL,
    photo TEXT NOT NULL,
    category TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    votes BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contestants_competition ON contestants(competition_id);

CREATE TABLE IF NOT EXISTS payment_transactions (
    seq BIGSERIAL UNIQUE,
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    competition_id TEXT NOT NULL,
    contestant_id TEXT NOT NULL,
    amount NUMERIC(12, 2) NOT NULL,
    payment_method TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('pending', 'completed', 'failed')),
    phone TEXT NOT NULL DEFAULT '',
    ip_address TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_competition ON payment_transactions(competition_id);

CREATE TABLE IF NOT EXISTS votes (
    seq BIGSERIAL UNIQUE,
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    competition_id TEXT NOT NULL,
    contestant_id TEXT NOT NULL,
    transaction_id TEXT,
    ip_address TEXT NOT NULL DEFAULT '',
    verified BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_votes_competition ON votes(competition_id);
CREATE INDEX IF NOT EXISTS idx_votes_contestant ON votes(contestant_id);

CREATE TABLE IF NOT EXISTS vote_history (
    user_id TEXT NOT NULL,
    competition_id TEXT NOT NULL,
    votes_used INTEGER NOT NULL,
    max_votes INTEGER NOT NULL,
    last_vote_date TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (user_id, competition_id)
);

CREATE TABLE IF NOT EXISTS admins (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);
`
