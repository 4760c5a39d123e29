package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
	"github.com/jengzang/travel-atlas-go/internal/mapdata"
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/repository"
	"github.com/jengzang/travel-atlas-go/internal/spatial"
)

// Nearby search limits
const (
	DefaultNearbyRadiusKm = 25.0
	MaxNearbyRadiusKm     = 500.0
	DefaultNearbyLimit    = 20
	MaxNearbyLimit        = 200
)

// NearbyPOI is a POI with its distance from the search point.
type NearbyPOI struct {
	mapdata.POIView
	DistanceKm float64 `json:"distanceKm"`
}

// POIService handles business logic for points of interest
type POIService struct {
	maps *mapdata.Service
	repo *repository.POIRepository
	log  *zap.Logger
}

// NewPOIService creates a new POI service
func NewPOIService(maps *mapdata.Service, repo *repository.POIRepository, log *zap.Logger) *POIService {
	return &POIService{maps: maps, repo: repo, log: log.Named("pois")}
}

// GetPOI retrieves a POI by id
func (s *POIService) GetPOI(ctx context.Context, id string) (*models.POI, error) {
	poi, err := s.repo.GetPOI(ctx, id)
	if err != nil {
		return nil, backendUnlessClassified("get poi", err)
	}
	return poi, nil
}

// Nearby returns the POIs within the filter radius, nearest first
func (s *POIService) Nearby(ctx context.Context, filter models.NearbyFilter) ([]NearbyPOI, error) {
	if err := validateLatLng(filter.Lat, filter.Lng); err != nil {
		return nil, err
	}
	if filter.RadiusKm == 0 {
		filter.RadiusKm = DefaultNearbyRadiusKm
	}
	if filter.RadiusKm < 0 || filter.RadiusKm > MaxNearbyRadiusKm {
		return nil, apperror.Invalid("radiusKm", "must be between 0 and 500")
	}
	if filter.Limit < 1 {
		filter.Limit = DefaultNearbyLimit
	}
	if filter.Limit > MaxNearbyLimit {
		filter.Limit = MaxNearbyLimit
	}

	radius := filter.RadiusKm * 1000
	candidates, err := s.repo.ListInBox(ctx, spatial.BoundsAround(filter.Lat, filter.Lng, radius))
	if err != nil {
		return nil, apperror.Backend("list nearby pois", err)
	}

	locale := models.ParseLocale(filter.Locale)
	out := make([]NearbyPOI, 0, len(candidates))
	for _, p := range candidates {
		d := spatial.HaversineDistance(filter.Lat, filter.Lng, p.Lat(), p.Lng())
		if d > radius {
			continue
		}
		out = append(out, NearbyPOI{POIView: mapdata.ResolvePOI(p, locale), DistanceKm: d / 1000})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// CreatePOI stores a new POI
func (s *POIService) CreatePOI(ctx context.Context, poi *models.POI) error {
	if err := validatePOI(poi); err != nil {
		return err
	}
	if err := s.repo.CreatePOI(ctx, poi); err != nil {
		return backendUnlessClassified("create poi", err)
	}
	s.invalidate("poi created", poi.ID)
	return nil
}

// UpsertPOI creates or replaces the POI with id
func (s *POIService) UpsertPOI(ctx context.Context, id string, poi *models.POI) error {
	poi.ID = id
	if err := validatePOI(poi); err != nil {
		return err
	}
	if err := s.repo.UpsertPOI(ctx, poi); err != nil {
		return backendUnlessClassified("upsert poi", err)
	}
	s.invalidate("poi saved", id)
	return nil
}

// DeletePOI removes a POI and its reviews
func (s *POIService) DeletePOI(ctx context.Context, id string) error {
	if err := s.repo.DeletePOI(ctx, id); err != nil {
		return backendUnlessClassified("delete poi", err)
	}
	s.invalidate("poi deleted", id)
	return nil
}

func (s *POIService) invalidate(msg, id string) {
	s.maps.InvalidatePOIs()
	s.log.Info(msg, zap.String("poi_id", id))
}

func validatePOI(poi *models.POI) error {
	if strings.TrimSpace(poi.ID) == "" {
		return apperror.Invalid("id", "is required")
	}
	if strings.TrimSpace(poi.Name.Default) == "" {
		return apperror.Invalid("name", "is required")
	}
	if !poi.Category.Valid() {
		return apperror.Invalid("category", "is not a known category")
	}
	if err := validateLatLng(poi.Lat(), poi.Lng()); err != nil {
		return err
	}
	if poi.Priority != nil && *poi.Priority < 0 {
		return apperror.Invalid("priority", "must not be negative")
	}
	return nil
}
