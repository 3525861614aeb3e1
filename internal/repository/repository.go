// Package repository implements the durable collections over postgres.
// The two multi-step mutations (submission decisions, station deletion)
// run as scoped transactions that lock their target row FOR UPDATE and
// roll back in full on any error.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tarcart/internal/models"
)

// querier is satisfied by *sql.DB and *sql.Tx so single-statement helpers
// can run standalone or inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func withTx(ctx context.Context, pool *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("repository: rollback after %w: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit: %w", err)
	}
	return nil
}

func insertStation(ctx context.Context, q querier, station *models.Station) (int64, error) {
	const query = `
		INSERT INTO stations (name, brand, address, city, state, latitude, longitude, is_home, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err := q.QueryRowContext(ctx, query,
		station.Name,
		station.Brand,
		station.Address,
		station.City,
		station.State,
		station.Latitude,
		station.Longitude,
		station.IsHome,
		station.IsActive,
	).Scan(&station.ID, &station.CreatedAt)
	if err != nil {
		return 0, err
	}
	return station.ID, nil
}

func appendEntry(ctx context.Context, q querier, entry *models.PriceEntry) (int64, error) {
	if entry.PriceCents < 0 {
		return 0, fmt.Errorf("repository: negative price %d", entry.PriceCents)
	}
	const query = `
		INSERT INTO station_prices (station_id, grade, price_cents, effective_at, source, source_note)
		VALUES ($1, $2, $3, COALESCE($4, NOW()), $5, $6)
		RETURNING id, effective_at
	`
	var effectiveAt any
	if !entry.EffectiveAt.IsZero() {
		effectiveAt = entry.EffectiveAt
	}
	err := q.QueryRowContext(ctx, query,
		entry.StationID,
		entry.Grade,
		entry.PriceCents,
		effectiveAt,
		entry.Source,
		entry.SourceNote,
	).Scan(&entry.ID, &entry.EffectiveAt)
	if err != nil {
		return 0, err
	}
	return entry.ID, nil
}
