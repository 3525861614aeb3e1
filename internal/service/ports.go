package service

import (
	"context"
	"time"

	"tarcart/internal/geocode"
	"tarcart/internal/models"
)

// DirectoryStore is the station directory storage contract.
type DirectoryStore interface {
	GetStation(ctx context.Context, id int64) (*models.Station, error)
	ListStations(ctx context.Context, activeOnly bool) ([]models.Station, error)
	CreateStation(ctx context.Context, station *models.Station) (int64, error)
	// PatchCoordinates writes lat/lng only when both are currently unset.
	// Returns false without error when the station already had coordinates.
	PatchCoordinates(ctx context.Context, id int64, lat, lng float64) (bool, error)
	// DeleteStationCascade removes the station, its ledger rows, and detaches
	// referencing submissions as one atomic unit with the station row locked.
	DeleteStationCascade(ctx context.Context, id int64) error
}

// StationLister is the subset of the directory the aggregation engine needs.
type StationLister interface {
	ListStations(ctx context.Context, activeOnly bool) ([]models.Station, error)
}

// SubmissionStore is the submission queue storage contract.
type SubmissionStore interface {
	InsertSubmission(ctx context.Context, sub *models.Submission) (int64, error)
	ListSubmissions(ctx context.Context, status string, limit int) ([]models.SubmissionView, error)
}

// ModerationTx exposes the writes available inside a decision transaction.
// The target submission row stays locked until the transaction ends.
type ModerationTx interface {
	SubmissionForUpdate(ctx context.Context, id int64) (*models.Submission, error)
	AppendEntry(ctx context.Context, entry *models.PriceEntry) (int64, error)
	InsertStation(ctx context.Context, station *models.Station) (int64, error)
	FinishReview(ctx context.Context, id int64, status string, stationID *int64, reviewedAt time.Time) error
}

// ModerationStore runs fn inside a single transaction. Any error from fn
// rolls the transaction back in full.
type ModerationStore interface {
	DecideTx(ctx context.Context, fn func(tx ModerationTx) error) error
}

// LedgerStore is the append side of the price ledger.
type LedgerStore interface {
	AppendEntry(ctx context.Context, entry *models.PriceEntry) (int64, error)
}

// LedgerReader is the read side of the price ledger, joined with station
// group flags, ordered by (effective_at, id) ascending.
type LedgerReader interface {
	Facts(ctx context.Context) ([]models.PriceFact, error)
	// FactsSince returns entries with effective_at >= since, optionally
	// filtered to one grade ("all" or empty selects every grade).
	FactsSince(ctx context.Context, grade string, since time.Time) ([]models.PriceFact, error)
}

// Geocoder resolves a free-text address to coordinates. A nil result with a
// nil error means the provider had no match.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocode.Coordinates, error)
}

// ReportStore caches the derived reports. Gets return cache.ErrMiss when
// the report is absent; Invalidate drops every cached report and is called
// after any write that changes report inputs.
type ReportStore interface {
	GetSnapshot(ctx context.Context) ([]models.StationSnapshot, error)
	SetSnapshot(ctx context.Context, report []models.StationSnapshot) error
	GetSpread(ctx context.Context) ([]models.GradeSpread, error)
	SetSpread(ctx context.Context, report []models.GradeSpread) error
	Invalidate(ctx context.Context) error
}
