package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"tarcart/internal/cache"
	"tarcart/internal/models"
)

const (
	// GradeAll selects every grade in windowed reports.
	GradeAll = "all"

	defaultHistoryDays = 14
	dayFormat          = "2006-01-02"
)

// AnalyticsService reduces the append-only ledger into point-in-time and
// time-series reports. All reductions are pure; re-running any report with
// no intervening writes yields identical results.
type AnalyticsService struct {
	ledger   LedgerReader
	stations StationLister
	reports  ReportStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewAnalyticsService builds the aggregation engine. reports may be nil.
func NewAnalyticsService(ledger LedgerReader, stations StationLister, reports ReportStore, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		ledger:   ledger,
		stations: stations,
		reports:  reports,
		logger:   logger,
		now:      time.Now,
	}
}

// CurrentSnapshot returns every active station with its current price per
// grade. Stations without ledger rows report an empty price map.
func (s *AnalyticsService) CurrentSnapshot(ctx context.Context) ([]models.StationSnapshot, error) {
	if s.reports != nil {
		if cached, err := s.reports.GetSnapshot(ctx); err == nil {
			return cached, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("snapshot cache read failed", zap.Error(err))
		}
	}

	stations, err := s.stations.ListStations(ctx, true)
	if err != nil {
		return nil, err
	}
	facts, err := s.ledger.Facts(ctx)
	if err != nil {
		return nil, err
	}

	current := make(map[int64]map[string]int64)
	for _, fact := range latestFacts(facts) {
		prices, ok := current[fact.StationID]
		if !ok {
			prices = make(map[string]int64)
			current[fact.StationID] = prices
		}
		prices[fact.Grade] = fact.PriceCents
	}

	snapshots := make([]models.StationSnapshot, 0, len(stations))
	for _, station := range stations {
		prices := current[station.ID]
		if prices == nil {
			prices = map[string]int64{}
		}
		snapshots = append(snapshots, models.StationSnapshot{Station: station, Prices: prices})
	}

	if s.reports != nil {
		if err := s.reports.SetSnapshot(ctx, snapshots); err != nil {
			s.logger.Warn("snapshot cache write failed", zap.Error(err))
		}
	}
	return snapshots, nil
}

// PriceHistory buckets the trailing periodDays of ledger entries by UTC
// calendar day and home/competitor group, averaging prices per bucket.
// Non-positive periodDays falls back to 14.
func (s *AnalyticsService) PriceHistory(ctx context.Context, grade string, periodDays int) ([]models.HistoryPoint, error) {
	if periodDays <= 0 {
		periodDays = defaultHistoryDays
	}
	since := s.now().UTC().AddDate(0, 0, -periodDays)

	facts, err := s.ledger.FactsSince(ctx, grade, since)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		homeSum, homeN int64
		compSum, compN int64
	}
	buckets := make(map[string]*bucket)
	for _, fact := range facts {
		day := fact.EffectiveAt.UTC().Format(dayFormat)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		if fact.IsHome {
			b.homeSum += fact.PriceCents
			b.homeN++
		} else {
			b.compSum += fact.PriceCents
			b.compN++
		}
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	points := make([]models.HistoryPoint, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		points = append(points, models.HistoryPoint{
			Day:                     day,
			HomeAvgPriceCents:       meanCents(b.homeSum, b.homeN),
			CompetitorAvgPriceCents: meanCents(b.compSum, b.compN),
		})
	}
	return points, nil
}

// CurrentSpread reports, per grade in ascending order, home and competitor
// statistics over each station's single latest ledger entry, plus the
// derived spreads. A derived value is nil when either operand side has no
// stations with a current price.
func (s *AnalyticsService) CurrentSpread(ctx context.Context) ([]models.GradeSpread, error) {
	if s.reports != nil {
		if cached, err := s.reports.GetSpread(ctx); err == nil {
			return cached, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("spread cache read failed", zap.Error(err))
		}
	}

	facts, err := s.ledger.Facts(ctx)
	if err != nil {
		return nil, err
	}

	type groupStats struct {
		sum, min, max int64
		count         int
	}
	type gradeStats struct {
		home, comp groupStats
	}
	byGrade := make(map[string]*gradeStats)
	for _, fact := range latestFacts(facts) {
		stats, ok := byGrade[fact.Grade]
		if !ok {
			stats = &gradeStats{}
			byGrade[fact.Grade] = stats
		}
		g := &stats.comp
		if fact.IsHome {
			g = &stats.home
		}
		if g.count == 0 || fact.PriceCents < g.min {
			g.min = fact.PriceCents
		}
		if g.count == 0 || fact.PriceCents > g.max {
			g.max = fact.PriceCents
		}
		g.sum += fact.PriceCents
		g.count++
	}

	grades := make([]string, 0, len(byGrade))
	for grade := range byGrade {
		grades = append(grades, grade)
	}
	sort.Strings(grades)

	spreads := make([]models.GradeSpread, 0, len(grades))
	for _, grade := range grades {
		stats := byGrade[grade]
		row := models.GradeSpread{
			Grade:                   grade,
			HomeStationCount:        stats.home.count,
			CompetitorStationCount:  stats.comp.count,
			HomeAvgPriceCents:       meanCents(stats.home.sum, int64(stats.home.count)),
			CompetitorAvgPriceCents: meanCents(stats.comp.sum, int64(stats.comp.count)),
		}
		if stats.home.count > 0 {
			row.HomeMinPriceCents = ptrInt64(stats.home.min)
			row.HomeMaxPriceCents = ptrInt64(stats.home.max)
		}
		if stats.comp.count > 0 {
			row.CompetitorMinPriceCents = ptrInt64(stats.comp.min)
			row.CompetitorMaxPriceCents = ptrInt64(stats.comp.max)
		}
		row.AvgSpreadCents = diff(row.CompetitorAvgPriceCents, row.HomeAvgPriceCents)
		row.BestCaseSpreadCents = diff(row.CompetitorMinPriceCents, row.HomeAvgPriceCents)
		row.WorstCaseSpreadCents = diff(row.CompetitorMaxPriceCents, row.HomeAvgPriceCents)
		spreads = append(spreads, row)
	}

	if s.reports != nil {
		if err := s.reports.SetSpread(ctx, spreads); err != nil {
			s.logger.Warn("spread cache write failed", zap.Error(err))
		}
	}
	return spreads, nil
}

// latestFacts reduces the ledger to one winning fact per (station, grade):
// the entry with the maximum effective_at, ties broken by higher entry id.
func latestFacts(facts []models.PriceFact) []models.PriceFact {
	type key struct {
		stationID int64
		grade     string
	}
	winners := make(map[key]models.PriceFact)
	for _, fact := range facts {
		k := key{fact.StationID, fact.Grade}
		cur, ok := winners[k]
		if !ok || fact.EffectiveAt.After(cur.EffectiveAt) ||
			(fact.EffectiveAt.Equal(cur.EffectiveAt) && fact.EntryID > cur.EntryID) {
			winners[k] = fact
		}
	}

	out := make([]models.PriceFact, 0, len(winners))
	for _, fact := range winners {
		out = append(out, fact)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StationID != out[j].StationID {
			return out[i].StationID < out[j].StationID
		}
		return out[i].Grade < out[j].Grade
	})
	return out
}

func meanCents(sum, n int64) *int64 {
	if n == 0 {
		return nil
	}
	mean := int64(math.Round(float64(sum) / float64(n)))
	return &mean
}

func diff(a, b *int64) *int64 {
	if a == nil || b == nil {
		return nil
	}
	d := *a - *b
	return &d
}

func ptrInt64(v int64) *int64 {
	return &v
}
