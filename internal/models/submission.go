package models

import "time"

// Submission moderation states. A submission is decided at most once.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// Submission is a community-proposed fact awaiting moderation. A set
// StationID marks a price-update proposal; an unset one a new-station
// proposal. Submissions are kept forever as an audit trail, even after the
// referenced station is deleted (the reference is then cleared).
type Submission struct {
	ID             int64      `db:"id" json:"id"`
	StationID      *int64     `db:"station_id" json:"station_id"`
	StationName    *string    `db:"station_name" json:"station_name"`
	StationAddress *string    `db:"station_address" json:"station_address"`
	Grade          *string    `db:"grade" json:"grade"`
	PriceCents     *int64     `db:"price_cents" json:"price_cents"`
	Notes          *string    `db:"notes" json:"notes"`
	SubmitterName  *string    `db:"submitter_name" json:"submitter_name"`
	SubmitterIP    *string    `db:"submitter_ip" json:"-"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	ReviewedAt     *time.Time `db:"reviewed_at" json:"reviewed_at"`
}

// SubmissionView is a submission enriched with the current station name and
// address from the directory when the submission is linked; unlinked rows
// fall back to the submission's own free-text fields.
type SubmissionView struct {
	ID             int64     `json:"id"`
	StationID      *int64    `json:"station_id"`
	StationName    *string   `json:"station_name"`
	StationAddress *string   `json:"station_address"`
	City           *string   `json:"city"`
	State          *string   `json:"state"`
	Grade          *string   `json:"grade"`
	PriceCents     *int64    `json:"price_cents"`
	Notes          *string   `json:"notes"`
	SubmitterName  *string   `json:"submitter_name"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}
