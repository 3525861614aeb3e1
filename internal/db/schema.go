package db

import (
	"context"
	"database/sql"
	"fmt"
)

// The price ledger is append-only: station_prices rows are never updated or
// deleted outside of a station cascade delete. Current prices are always
// derived from the latest row per (station_id, grade).
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS stations (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		brand TEXT,
		address TEXT,
		city TEXT,
		state TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		is_home BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS station_prices (
		id BIGSERIAL PRIMARY KEY,
		station_id BIGINT NOT NULL REFERENCES stations(id),
		grade TEXT NOT NULL,
		price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
		effective_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		source TEXT NOT NULL DEFAULT '',
		source_note TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_station_prices_latest
		ON station_prices (station_id, grade, effective_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS price_submissions (
		id BIGSERIAL PRIMARY KEY,
		station_id BIGINT REFERENCES stations(id),
		station_name TEXT,
		station_address TEXT,
		grade TEXT,
		price_cents BIGINT,
		notes TEXT,
		submitter_name TEXT,
		submitter_ip TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		reviewed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_price_submissions_status
		ON price_submissions (status, created_at DESC)`,
}

// EnsureSchema creates the durable collections if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db: ensure schema: %w", err)
		}
	}
	return nil
}
