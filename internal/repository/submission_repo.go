package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tarcart/internal/models"
	"tarcart/internal/service"
)

// SubmissionRepository persists the moderation queue and hosts the decision
// transaction.
type SubmissionRepository struct {
	pool *sql.DB
}

// NewSubmissionRepository returns repository.
func NewSubmissionRepository(pool *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// InsertSubmission stores a new pending submission and returns its id.
func (r *SubmissionRepository) InsertSubmission(ctx context.Context, sub *models.Submission) (int64, error) {
	const query = `
		INSERT INTO price_submissions (
			station_id, station_name, station_address, grade, price_cents,
			notes, submitter_name, submitter_ip, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()))
		RETURNING id, created_at
	`
	var createdAt any
	if !sub.CreatedAt.IsZero() {
		createdAt = sub.CreatedAt
	}
	err := r.pool.QueryRowContext(ctx, query,
		sub.StationID,
		sub.StationName,
		sub.StationAddress,
		sub.Grade,
		sub.PriceCents,
		sub.Notes,
		sub.SubmitterName,
		sub.SubmitterIP,
		sub.Status,
		createdAt,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return 0, err
	}
	return sub.ID, nil
}

// ListSubmissions returns submissions with the given status, newest first,
// enriched with the current station name/address when linked.
func (r *SubmissionRepository) ListSubmissions(ctx context.Context, status string, limit int) ([]models.SubmissionView, error) {
	const query = `
		SELECT
			ps.id,
			ps.station_id,
			COALESCE(s.name, ps.station_name) AS station_name,
			COALESCE(s.address, ps.station_address) AS station_address,
			s.city,
			s.state,
			ps.grade,
			ps.price_cents,
			ps.notes,
			ps.submitter_name,
			ps.status,
			ps.created_at
		FROM price_submissions ps
		LEFT JOIN stations s ON s.id = ps.station_id
		WHERE ps.status = $1
		ORDER BY ps.created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []models.SubmissionView
	for rows.Next() {
		var view models.SubmissionView
		if err := rows.Scan(
			&view.ID,
			&view.StationID,
			&view.StationName,
			&view.StationAddress,
			&view.City,
			&view.State,
			&view.Grade,
			&view.PriceCents,
			&view.Notes,
			&view.SubmitterName,
			&view.Status,
			&view.CreatedAt,
		); err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

// DecideTx runs fn inside a transaction exposing the moderation writes. The
// submission row stays locked from SubmissionForUpdate until commit or
// rollback, so concurrent decisions on the same submission serialize.
func (r *SubmissionRepository) DecideTx(ctx context.Context, fn func(tx service.ModerationTx) error) error {
	return withTx(ctx, r.pool, func(tx *sql.Tx) error {
		return fn(&moderationTx{tx: tx})
	})
}

type moderationTx struct {
	tx *sql.Tx
}

func (m *moderationTx) SubmissionForUpdate(ctx context.Context, id int64) (*models.Submission, error) {
	const query = `
		SELECT id, station_id, station_name, station_address, grade, price_cents,
		       notes, submitter_name, submitter_ip, status, created_at, reviewed_at
		FROM price_submissions
		WHERE id = $1
		FOR UPDATE
	`
	var sub models.Submission
	err := m.tx.QueryRowContext(ctx, query, id).Scan(
		&sub.ID,
		&sub.StationID,
		&sub.StationName,
		&sub.StationAddress,
		&sub.Grade,
		&sub.PriceCents,
		&sub.Notes,
		&sub.SubmitterName,
		&sub.SubmitterIP,
		&sub.Status,
		&sub.CreatedAt,
		&sub.ReviewedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, service.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (m *moderationTx) AppendEntry(ctx context.Context, entry *models.PriceEntry) (int64, error) {
	return appendEntry(ctx, m.tx, entry)
}

func (m *moderationTx) InsertStation(ctx context.Context, station *models.Station) (int64, error) {
	return insertStation(ctx, m.tx, station)
}

func (m *moderationTx) FinishReview(ctx context.Context, id int64, status string, stationID *int64, reviewedAt time.Time) error {
	const query = `
		UPDATE price_submissions
		SET status = $2, station_id = $3, reviewed_at = $4
		WHERE id = $1
	`
	result, err := m.tx.ExecContext(ctx, query, id, status, stationID, reviewedAt)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return service.ErrSubmissionNotFound
	}
	return nil
}
