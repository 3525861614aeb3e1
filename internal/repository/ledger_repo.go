package repository

import (
	"context"
	"database/sql"
	"time"

	"tarcart/internal/models"
	"tarcart/internal/service"
)

// LedgerRepository persists the append-only price ledger. Rows are only
// ever inserted here; history is kept in full and "current" prices are
// derived by the aggregation engine.
type LedgerRepository struct {
	pool *sql.DB
}

// NewLedgerRepository returns repository.
func NewLedgerRepository(pool *sql.DB) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// AppendEntry inserts one ledger fact.
func (r *LedgerRepository) AppendEntry(ctx context.Context, entry *models.PriceEntry) (int64, error) {
	return appendEntry(ctx, r.pool, entry)
}

// Facts returns every ledger entry joined with the owning station's group
// flag, ordered by (effective_at, id) ascending.
func (r *LedgerRepository) Facts(ctx context.Context) ([]models.PriceFact, error) {
	const query = `
		SELECT sp.id, sp.station_id, sp.grade, sp.price_cents, sp.effective_at, s.is_home
		FROM station_prices sp
		JOIN stations s ON s.id = sp.station_id
		ORDER BY sp.effective_at ASC, sp.id ASC
	`
	return r.queryFacts(ctx, query)
}

// FactsSince returns entries with effective_at >= since, optionally
// filtered to one grade ("all" or empty selects every grade).
func (r *LedgerRepository) FactsSince(ctx context.Context, grade string, since time.Time) ([]models.PriceFact, error) {
	query := `
		SELECT sp.id, sp.station_id, sp.grade, sp.price_cents, sp.effective_at, s.is_home
		FROM station_prices sp
		JOIN stations s ON s.id = sp.station_id
		WHERE sp.effective_at >= $1
	`
	args := []any{since}
	if grade != "" && grade != service.GradeAll {
		query += ` AND sp.grade = $2`
		args = append(args, grade)
	}
	query += ` ORDER BY sp.effective_at ASC, sp.id ASC`

	return r.queryFacts(ctx, query, args...)
}

func (r *LedgerRepository) queryFacts(ctx context.Context, query string, args ...any) ([]models.PriceFact, error) {
	rows, err := r.pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []models.PriceFact
	for rows.Next() {
		var fact models.PriceFact
		if err := rows.Scan(
			&fact.EntryID,
			&fact.StationID,
			&fact.Grade,
			&fact.PriceCents,
			&fact.EffectiveAt,
			&fact.IsHome,
		); err != nil {
			return nil, err
		}
		facts = append(facts, fact)
	}
	return facts, rows.Err()
}
