package models

import "time"

// Station is a fuel station tracked by the directory. Exactly one station
// carries IsHome; it is the operator's own site and cannot be deleted.
type Station struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Brand     *string   `db:"brand" json:"brand"`
	Address   *string   `db:"address" json:"address"`
	City      *string   `db:"city" json:"city"`
	State     *string   `db:"state" json:"state"`
	Latitude  *float64  `db:"latitude" json:"latitude"`
	Longitude *float64  `db:"longitude" json:"longitude"`
	IsHome    bool      `db:"is_home" json:"is_home"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StationSnapshot is a station joined with its current price per grade,
// derived from the latest ledger entry for each (station, grade).
type StationSnapshot struct {
	Station
	Prices map[string]int64 `json:"prices_cents"`
}
