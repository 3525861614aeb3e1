package models

import "time"

// SourceAdminApproval tags ledger entries written by submission approval.
const SourceAdminApproval = "admin-approval"

// PriceEntry is one immutable fact in the price ledger. Entries are never
// updated in place; newer entries supersede older ones.
type PriceEntry struct {
	ID          int64     `db:"id" json:"id"`
	StationID   int64     `db:"station_id" json:"station_id"`
	Grade       string    `db:"grade" json:"grade"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	EffectiveAt time.Time `db:"effective_at" json:"effective_at"`
	Source      string    `db:"source" json:"source"`
	SourceNote  *string   `db:"source_note" json:"source_note"`
}

// PriceFact is a ledger entry joined with the owning station's group flag.
// The aggregation engine reduces slices of these into reports.
type PriceFact struct {
	EntryID     int64
	StationID   int64
	Grade       string
	PriceCents  int64
	EffectiveAt time.Time
	IsHome      bool
}

// HistoryPoint is one calendar-day bucket of the price-history report.
// A side with no ledger entries on that day stays nil.
type HistoryPoint struct {
	Day                     string `json:"day"`
	HomeAvgPriceCents       *int64 `json:"home_avg_price_cents"`
	CompetitorAvgPriceCents *int64 `json:"competitor_avg_price_cents"`
}

// GradeSpread reports home-vs-competitor statistics for one grade, using
// only each station's single latest ledger entry.
type GradeSpread struct {
	Grade                   string `json:"grade"`
	HomeAvgPriceCents       *int64 `json:"home_avg_price_cents"`
	CompetitorAvgPriceCents *int64 `json:"competitor_avg_price_cents"`
	HomeStationCount        int    `json:"home_station_count"`
	CompetitorStationCount  int    `json:"competitor_station_count"`
	HomeMinPriceCents       *int64 `json:"home_min_price_cents"`
	HomeMaxPriceCents       *int64 `json:"home_max_price_cents"`
	CompetitorMinPriceCents *int64 `json:"competitor_min_price_cents"`
	CompetitorMaxPriceCents *int64 `json:"competitor_max_price_cents"`
	AvgSpreadCents          *int64 `json:"avg_spread_cents"`
	BestCaseSpreadCents     *int64 `json:"best_case_spread_cents"`
	WorstCaseSpreadCents    *int64 `json:"worst_case_spread_cents"`
}
