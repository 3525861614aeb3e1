package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"tarcart/internal/models"
)

type fakeLedger struct {
	facts []models.PriceFact
}

func (f *fakeLedger) Facts(ctx context.Context) ([]models.PriceFact, error) {
	return append([]models.PriceFact(nil), f.facts...), nil
}

func (f *fakeLedger) FactsSince(ctx context.Context, grade string, since time.Time) ([]models.PriceFact, error) {
	var out []models.PriceFact
	for _, fact := range f.facts {
		if fact.EffectiveAt.Before(since) {
			continue
		}
		if grade != "" && grade != GradeAll && fact.Grade != grade {
			continue
		}
		out = append(out, fact)
	}
	return out, nil
}

type fakeStationLister struct {
	stations []models.Station
}

func (f *fakeStationLister) ListStations(ctx context.Context, activeOnly bool) ([]models.Station, error) {
	var out []models.Station
	for _, station := range f.stations {
		if activeOnly && !station.IsActive {
			continue
		}
		out = append(out, station)
	}
	return out, nil
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %s: %v", value, err)
	}
	return parsed
}

func newTestAnalytics(ledger *fakeLedger, stations *fakeStationLister, now time.Time) *AnalyticsService {
	svc := NewAnalyticsService(ledger, stations, nil, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestLatestFactsPicksNewestWithIDTieBreak(t *testing.T) {
	at := day(t, "2026-03-10T09:00:00Z")
	later := day(t, "2026-03-11T09:00:00Z")
	facts := []models.PriceFact{
		{EntryID: 1, StationID: 1, Grade: "87", PriceCents: 3100, EffectiveAt: at},
		{EntryID: 2, StationID: 1, Grade: "87", PriceCents: 3200, EffectiveAt: later},
		{EntryID: 3, StationID: 1, Grade: "87", PriceCents: 3300, EffectiveAt: later},
		{EntryID: 4, StationID: 1, Grade: "93", PriceCents: 3500, EffectiveAt: at},
		{EntryID: 5, StationID: 2, Grade: "87", PriceCents: 3250, EffectiveAt: at},
	}

	latest := latestFacts(facts)
	if len(latest) != 3 {
		t.Fatalf("expected 3 winners, got %d", len(latest))
	}
	// Station 1 grade 87: two entries share effective_at; higher id wins.
	if latest[0].EntryID != 3 || latest[0].PriceCents != 3300 {
		t.Fatalf("expected entry 3 to win the tie, got %+v", latest[0])
	}
	if latest[1].Grade != "93" || latest[2].StationID != 2 {
		t.Fatalf("unexpected winner order: %+v", latest)
	}
}

func TestCurrentSnapshotEmptyPricesForStationsWithoutEntries(t *testing.T) {
	now := day(t, "2026-03-14T12:00:00Z")
	ledger := &fakeLedger{facts: []models.PriceFact{
		{EntryID: 1, StationID: 1, Grade: "87", PriceCents: 3259, EffectiveAt: now, IsHome: true},
	}}
	stations := &fakeStationLister{stations: []models.Station{
		{ID: 1, Name: "Home", IsHome: true, IsActive: true},
		{ID: 2, Name: "Quiet Competitor", IsActive: true},
		{ID: 3, Name: "Hidden", IsActive: false},
	}}

	svc := newTestAnalytics(ledger, stations, now)
	snapshots, err := svc.CurrentSnapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 active stations, got %d", len(snapshots))
	}
	if snapshots[0].Prices["87"] != 3259 {
		t.Fatalf("expected home price 3259, got %v", snapshots[0].Prices)
	}
	if snapshots[1].Prices == nil || len(snapshots[1].Prices) != 0 {
		t.Fatalf("station without entries must report an empty map, got %v", snapshots[1].Prices)
	}
}

func TestCurrentSnapshotReportsLatestPrice(t *testing.T) {
	now := day(t, "2026-03-14T12:00:00Z")
	ledger := &fakeLedger{facts: []models.PriceFact{
		{EntryID: 1, StationID: 1, Grade: "87", PriceCents: 3100, EffectiveAt: now.Add(-48 * time.Hour), IsHome: true},
		{EntryID: 2, StationID: 1, Grade: "87", PriceCents: 3259, EffectiveAt: now, IsHome: true},
	}}
	stations := &fakeStationLister{stations: []models.Station{
		{ID: 1, Name: "Home", IsHome: true, IsActive: true},
	}}

	svc := newTestAnalytics(ledger, stations, now)
	snapshots, err := svc.CurrentSnapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshots[0].Prices["87"] != 3259 {
		t.Fatalf("expected superseding price 3259, got %d", snapshots[0].Prices["87"])
	}
}

func TestPriceHistoryWindowAndBuckets(t *testing.T) {
	now := day(t, "2026-03-14T18:00:00Z")
	ledger := &fakeLedger{facts: []models.PriceFact{
		// Outside the 14-day window: must not appear.
		{EntryID: 1, StationID: 1, Grade: "87", PriceCents: 2900, EffectiveAt: now.AddDate(0, 0, -20), IsHome: true},
		// Two home entries on the same day average together.
		{EntryID: 2, StationID: 1, Grade: "87", PriceCents: 3200, EffectiveAt: day(t, "2026-03-10T08:00:00Z"), IsHome: true},
		{EntryID: 3, StationID: 1, Grade: "87", PriceCents: 3300, EffectiveAt: day(t, "2026-03-10T17:00:00Z"), IsHome: true},
		// Competitor entry on a different day: its home side stays nil.
		{EntryID: 4, StationID: 2, Grade: "87", PriceCents: 3400, EffectiveAt: day(t, "2026-03-12T10:00:00Z")},
		// Another grade: excluded by the filter.
		{EntryID: 5, StationID: 2, Grade: "93", PriceCents: 3700, EffectiveAt: day(t, "2026-03-12T10:00:00Z")},
	}}

	svc := newTestAnalytics(ledger, &fakeStationLister{}, now)
	points, err := svc.PriceHistory(context.Background(), "87", 14)
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("expected 2 day buckets, got %d: %+v", len(points), points)
	}
	first := points[0]
	if first.Day != "2026-03-10" {
		t.Fatalf("expected ascending days, got %q first", first.Day)
	}
	if first.HomeAvgPriceCents == nil || *first.HomeAvgPriceCents != 3250 {
		t.Fatalf("expected home avg 3250, got %v", first.HomeAvgPriceCents)
	}
	if first.CompetitorAvgPriceCents != nil {
		t.Fatalf("expected nil competitor side, got %v", first.CompetitorAvgPriceCents)
	}
	second := points[1]
	if second.Day != "2026-03-12" || second.CompetitorAvgPriceCents == nil || *second.CompetitorAvgPriceCents != 3400 {
		t.Fatalf("unexpected second bucket: %+v", second)
	}
	if second.HomeAvgPriceCents != nil {
		t.Fatalf("expected nil home side on competitor-only day")
	}
}

func TestPriceHistoryEmptyOutsideWindow(t *testing.T) {
	now := day(t, "2026-03-14T18:00:00Z")
	ledger := &fakeLedger{facts: []models.PriceFact{
		{EntryID: 1, StationID: 1, Grade: "87", PriceCents: 3100, EffectiveAt: now.AddDate(0, 0, -30), IsHome: true},
	}}

	svc := newTestAnalytics(ledger, &fakeStationLister{}, now)
	points, err := svc.PriceHistory(context.Background(), "87", 14)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("expected empty series, got %+v", points)
	}

	// One entry inside the window produces exactly one bucket.
	ledger.facts = append(ledger.facts, models.PriceFact{
		EntryID: 2, StationID: 1, Grade: "87", PriceCents: 3259,
		EffectiveAt: now.AddDate(0, 0, -2), IsHome: true,
	})
	points, err = svc.PriceHistory(context.Background(), "87", 14)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected one bucket, got %d", len(points))
	}
	if points[0].HomeAvgPriceCents == nil || *points[0].HomeAvgPriceCents != 3259 {
		t.Fatalf("unexpected bucket: %+v", points[0])
	}
}

func TestPriceHistoryDefaultPeriod(t *testing.T) {
	now := day(t, "2026-03-14T18:00:00Z")
	ledger := &fakeLedger{facts: []models.PriceFact{
		{EntryID: 1, StationID: 1, Grade: "87", PriceCents: 3100, EffectiveAt: now.AddDate(0, 0, -10), IsHome: true},
		{EntryID: 2, StationID: 1, Grade: "87", PriceCents: 3100, EffectiveAt: now.AddDate(0, 0, -16), IsHome: true},
	}}

	svc := newTestAnalytics(ledger, &fakeStationLister{}, now)
	for _, bogus := range []int{0, -5} {
		points, err := svc.PriceHistory(context.Background(), "87", bogus)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(points) != 1 {
			t.Fatalf("expected the 14-day default window, got %d buckets", len(points))
		}
	}
}

func TestCurrentSpreadComputesGroupStats(t *testing.T) {
	now := day(t, "2026-03-14T12:00:00Z")
	ledger := &fakeLedger{facts: []models.PriceFact{
		{EntryID: 1, StationID: 1, Grade: "87", PriceCents: 3259, EffectiveAt: now, IsHome: true},
		{EntryID: 2, StationID: 2, Grade: "87", PriceCents: 3199, EffectiveAt: now},
		{EntryID: 3, StationID: 3, Grade: "87", PriceCents: 3399, EffectiveAt: now},
		// Superseded competitor entry must not count.
		{EntryID: 4, StationID: 2, Grade: "87", PriceCents: 2999, EffectiveAt: now.Add(-24 * time.Hour)},
	}}

	svc := newTestAnalytics(ledger, &fakeStationLister{}, now)
	spreads, err := svc.CurrentSpread(context.Background())
	if err != nil {
		t.Fatalf("spread: %v", err)
	}
	if len(spreads) != 1 {
		t.Fatalf("expected 1 grade, got %d", len(spreads))
	}

	row := spreads[0]
	if row.Grade != "87" {
		t.Fatalf("unexpected grade %q", row.Grade)
	}
	if row.HomeStationCount != 1 || row.CompetitorStationCount != 2 {
		t.Fatalf("unexpected counts: %+v", row)
	}
	if *row.HomeAvgPriceCents != 3259 || *row.CompetitorAvgPriceCents != 3299 {
		t.Fatalf("unexpected averages: %+v", row)
	}
	if *row.CompetitorMinPriceCents != 3199 || *row.CompetitorMaxPriceCents != 3399 {
		t.Fatalf("unexpected min/max: %+v", row)
	}
	if *row.AvgSpreadCents != 40 {
		t.Fatalf("expected avg spread 40, got %d", *row.AvgSpreadCents)
	}
	if *row.BestCaseSpreadCents != -60 {
		t.Fatalf("expected best case -60, got %d", *row.BestCaseSpreadCents)
	}
	if *row.WorstCaseSpreadCents != 140 {
		t.Fatalf("expected worst case 140, got %d", *row.WorstCaseSpreadCents)
	}
}

func TestCurrentSpreadNullsWithoutCompetitors(t *testing.T) {
	now := day(t, "2026-03-14T12:00:00Z")
	ledger := &fakeLedger{facts: []models.PriceFact{
		{EntryID: 1, StationID: 1, Grade: "diesel", PriceCents: 4159, EffectiveAt: now, IsHome: true},
	}}

	svc := newTestAnalytics(ledger, &fakeStationLister{}, now)
	spreads, err := svc.CurrentSpread(context.Background())
	if err != nil {
		t.Fatalf("spread: %v", err)
	}

	row := spreads[0]
	if row.HomeAvgPriceCents == nil || *row.HomeAvgPriceCents != 4159 {
		t.Fatalf("expected home side populated, got %+v", row)
	}
	if row.CompetitorAvgPriceCents != nil || row.AvgSpreadCents != nil ||
		row.BestCaseSpreadCents != nil || row.WorstCaseSpreadCents != nil {
		t.Fatalf("expected nil competitor and spread fields, got %+v", row)
	}
}

func TestCurrentSpreadGradesSortedAscending(t *testing.T) {
	now := day(t, "2026-03-14T12:00:00Z")
	ledger := &fakeLedger{facts: []models.PriceFact{
		{EntryID: 1, StationID: 1, Grade: "diesel", PriceCents: 4159, EffectiveAt: now, IsHome: true},
		{EntryID: 2, StationID: 1, Grade: "87", PriceCents: 3259, EffectiveAt: now, IsHome: true},
		{EntryID: 3, StationID: 1, Grade: "93", PriceCents: 3659, EffectiveAt: now, IsHome: true},
	}}

	svc := newTestAnalytics(ledger, &fakeStationLister{}, now)
	spreads, err := svc.CurrentSpread(context.Background())
	if err != nil {
		t.Fatalf("spread: %v", err)
	}

	var grades []string
	for _, row := range spreads {
		grades = append(grades, row.Grade)
	}
	if !reflect.DeepEqual(grades, []string{"87", "93", "diesel"}) {
		t.Fatalf("expected ascending grades, got %v", grades)
	}
}

func TestReportsAreIdempotent(t *testing.T) {
	now := day(t, "2026-03-14T12:00:00Z")
	ledger := &fakeLedger{facts: []models.PriceFact{
		{EntryID: 1, StationID: 1, Grade: "87", PriceCents: 3259, EffectiveAt: now.Add(-time.Hour), IsHome: true},
		{EntryID: 2, StationID: 2, Grade: "87", PriceCents: 3199, EffectiveAt: now.Add(-2 * time.Hour)},
	}}
	stations := &fakeStationLister{stations: []models.Station{
		{ID: 1, Name: "Home", IsHome: true, IsActive: true},
		{ID: 2, Name: "Rival", IsActive: true},
	}}

	svc := newTestAnalytics(ledger, stations, now)

	snapA, err := svc.CurrentSnapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	snapB, _ := svc.CurrentSnapshot(context.Background())
	if !reflect.DeepEqual(snapA, snapB) {
		t.Fatalf("snapshot not idempotent")
	}

	histA, err := svc.PriceHistory(context.Background(), GradeAll, 14)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	histB, _ := svc.PriceHistory(context.Background(), GradeAll, 14)
	if !reflect.DeepEqual(histA, histB) {
		t.Fatalf("history not idempotent")
	}

	spreadA, err := svc.CurrentSpread(context.Background())
	if err != nil {
		t.Fatalf("spread: %v", err)
	}
	spreadB, _ := svc.CurrentSpread(context.Background())
	if !reflect.DeepEqual(spreadA, spreadB) {
		t.Fatalf("spread not idempotent")
	}
}
