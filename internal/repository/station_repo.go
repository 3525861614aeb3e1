package repository

import (
	"context"
	"database/sql"
	"errors"

	"tarcart/internal/models"
	"tarcart/internal/service"
)

const stationColumns = `id, name, brand, address, city, state, latitude, longitude, is_home, is_active, created_at`

// StationRepository persists the station directory.
type StationRepository struct {
	pool *sql.DB
}

// NewStationRepository returns repository.
func NewStationRepository(pool *sql.DB) *StationRepository {
	return &StationRepository{pool: pool}
}

// GetStation returns one station by id.
func (r *StationRepository) GetStation(ctx context.Context, id int64) (*models.Station, error) {
	row := r.pool.QueryRowContext(ctx,
		`SELECT `+stationColumns+` FROM stations WHERE id = $1`, id)

	station, err := scanStation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, service.ErrStationNotFound
	}
	if err != nil {
		return nil, err
	}
	return station, nil
}

// ListStations returns stations ordered by id, optionally only active ones.
func (r *StationRepository) ListStations(ctx context.Context, activeOnly bool) ([]models.Station, error) {
	query := `SELECT ` + stationColumns + ` FROM stations`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY id ASC`

	rows, err := r.pool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, *station)
	}
	return stations, rows.Err()
}

// CreateStation inserts a station and returns its id.
func (r *StationRepository) CreateStation(ctx context.Context, station *models.Station) (int64, error) {
	return insertStation(ctx, r.pool, station)
}

// PatchCoordinates backfills latitude/longitude, but only when both are
// currently NULL; existing coordinates are never overwritten.
func (r *StationRepository) PatchCoordinates(ctx context.Context, id int64, lat, lng float64) (bool, error) {
	const query = `
		UPDATE stations
		SET latitude = $2, longitude = $3
		WHERE id = $1 AND latitude IS NULL AND longitude IS NULL
	`
	result, err := r.pool.ExecContext(ctx, query, id, lat, lng)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// DeleteStationCascade removes a station atomically: the station row is
// locked, its ledger rows deleted, referencing submissions detached (the
// audit trail survives), then the station itself removed. The home station
// is protected.
func (r *StationRepository) DeleteStationCascade(ctx context.Context, id int64) error {
	return withTx(ctx, r.pool, func(tx *sql.Tx) error {
		var isHome bool
		err := tx.QueryRowContext(ctx,
			`SELECT is_home FROM stations WHERE id = $1 FOR UPDATE`, id).Scan(&isHome)
		if errors.Is(err, sql.ErrNoRows) {
			return service.ErrStationNotFound
		}
		if err != nil {
			return err
		}
		if isHome {
			return service.ErrHomeStationProtected
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM station_prices WHERE station_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE price_submissions SET station_id = NULL WHERE station_id = $1`, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM stations WHERE id = $1`, id)
		return err
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStation(row rowScanner) (*models.Station, error) {
	var station models.Station
	err := row.Scan(
		&station.ID,
		&station.Name,
		&station.Brand,
		&station.Address,
		&station.City,
		&station.State,
		&station.Latitude,
		&station.Longitude,
		&station.IsHome,
		&station.IsActive,
		&station.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &station, nil
}
