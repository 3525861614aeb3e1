package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"tarcart/internal/geocode"
	"tarcart/internal/models"
)

// DirectoryService serves the station directory: listings with geocode
// backfill and the protected cascade delete.
type DirectoryService struct {
	store    DirectoryStore
	geocoder Geocoder
	reports  ReportStore
	logger   *zap.Logger
}

// NewDirectoryService builds the directory. geocoder and reports may be nil.
func NewDirectoryService(store DirectoryStore, geocoder Geocoder, reports ReportStore, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		store:    store,
		geocoder: geocoder,
		reports:  reports,
		logger:   logger,
	}
}

// List returns stations, backfilling coordinates for any station that has
// neither latitude nor longitude. Geocoding happens after the listing query
// completes, outside any lock; a failed or empty lookup leaves the
// coordinates unset and never fails the listing.
func (s *DirectoryService) List(ctx context.Context, activeOnly bool) ([]models.Station, error) {
	stations, err := s.store.ListStations(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	var patched bool
	for i := range stations {
		station := &stations[i]
		if station.Latitude != nil || station.Longitude != nil {
			continue
		}
		if s.backfillCoordinates(ctx, station) {
			patched = true
		}
	}

	// Cached snapshots embed station coordinates, so a backfill makes
	// them stale.
	if patched && s.reports != nil {
		if err := s.reports.Invalidate(ctx); err != nil {
			s.logger.Warn("failed to invalidate report cache", zap.Error(err))
		}
	}
	return stations, nil
}

// Get returns one station by id.
func (s *DirectoryService) Get(ctx context.Context, id int64) (*models.Station, error) {
	return s.store.GetStation(ctx, id)
}

// Delete removes a station together with its ledger rows, detaching any
// referencing submissions. The home station is protected.
func (s *DirectoryService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteStationCascade(ctx, id); err != nil {
		return err
	}

	s.logger.Info("station deleted", zap.Int64("station_id", id))

	if s.reports != nil {
		if err := s.reports.Invalidate(ctx); err != nil {
			s.logger.Warn("failed to invalidate report cache", zap.Error(err))
		}
	}
	return nil
}

func (s *DirectoryService) backfillCoordinates(ctx context.Context, station *models.Station) bool {
	if s.geocoder == nil {
		return false
	}

	full := joinAddress(station.Address, station.City, station.State)
	if full == "" {
		return false
	}

	coords, err := s.geocoder.Geocode(ctx, full)
	if err != nil {
		// Geocoding is best effort; the listing still returns.
		if errors.Is(err, geocode.ErrUnavailable) {
			s.logger.Warn("geocoding unavailable",
				zap.Int64("station_id", station.ID),
				zap.Error(err))
		} else {
			s.logger.Warn("geocoding failed",
				zap.Int64("station_id", station.ID),
				zap.Error(err))
		}
		return false
	}
	if coords == nil {
		s.logger.Info("no geocoding match",
			zap.Int64("station_id", station.ID),
			zap.String("address", full))
		return false
	}

	patched, err := s.store.PatchCoordinates(ctx, station.ID, coords.Lat, coords.Lng)
	if err != nil {
		s.logger.Warn("failed to persist coordinates",
			zap.Int64("station_id", station.ID),
			zap.Error(err))
		return false
	}
	if patched {
		station.Latitude = &coords.Lat
		station.Longitude = &coords.Lng
		s.logger.Info("station geocoded",
			zap.Int64("station_id", station.ID),
			zap.Float64("lat", coords.Lat),
			zap.Float64("lng", coords.Lng))
	}
	return patched
}

func joinAddress(parts ...*string) string {
	var present []string
	for _, p := range parts {
		if p != nil && strings.TrimSpace(*p) != "" {
			present = append(present, strings.TrimSpace(*p))
		}
	}
	return strings.Join(present, ", ")
}
