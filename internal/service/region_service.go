package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
	"github.com/jengzang/travel-atlas-go/internal/mapdata"
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/repository"
	"github.com/jengzang/travel-atlas-go/internal/scoring"
	"github.com/jengzang/travel-atlas-go/internal/spatial"
	"github.com/jengzang/travel-atlas-go/internal/stats"
)

// bestMonthsCount is how many months a region summary recommends.
const bestMonthsCount = 3

// RegionService handles business logic for regions. Reads are served from the
// map data cache; writes go to the repository and invalidate the cache.
type RegionService struct {
	maps *mapdata.Service
	repo *repository.RegionRepository
	log  *zap.Logger
}

// NewRegionService creates a new region service
func NewRegionService(maps *mapdata.Service, repo *repository.RegionRepository, log *zap.Logger) *RegionService {
	return &RegionService{maps: maps, repo: repo, log: log.Named("regions")}
}

// ListRegions returns every region with its months
func (s *RegionService) ListRegions(ctx context.Context) ([]*models.Region, error) {
	ref, err := s.maps.Reference(ctx)
	if err != nil {
		return nil, err
	}
	return ref.Regions, nil
}

// GetRegion returns a region by id
func (s *RegionService) GetRegion(ctx context.Context, id string) (*models.Region, error) {
	ref, err := s.maps.Reference(ctx)
	if err != nil {
		return nil, err
	}
	region, ok := ref.Region(id)
	if !ok {
		return nil, apperror.NotFound("region", id)
	}
	return region, nil
}

// GetSummary aggregates a region's monthly metrics
func (s *RegionService) GetSummary(ctx context.Context, id string) (*models.RegionSummary, error) {
	region, err := s.GetRegion(ctx, id)
	if err != nil {
		return nil, err
	}
	return Summarize(region), nil
}

// Summarize computes the best months by recommended score, the means of each
// score and the cheapest month by average daily cost.
func Summarize(region *models.Region) *models.RegionSummary {
	summary := &models.RegionSummary{RegionID: region.ID, BestMonths: []int{}}

	recommended := make(map[int]float64, len(region.Months))
	dailyCost := make(map[int]float64, len(region.Months))
	var weather, cost, rec, costs []float64
	for month, m := range region.Months {
		if m == nil {
			continue
		}
		recommended[month] = m.RecommendedScore
		weather = append(weather, m.WeatherScore)
		cost = append(cost, m.CostScore)
		rec = append(rec, m.RecommendedScore)
		if m.AvgDailyCost > 0 {
			dailyCost[month] = m.AvgDailyCost
			costs = append(costs, m.AvgDailyCost)
		}
	}

	summary.MonthsWithData = len(recommended)
	if summary.MonthsWithData == 0 {
		return summary
	}
	summary.BestMonths = stats.TopKeys(recommended, bestMonthsCount)
	if month, ok := stats.MinKey(dailyCost); ok {
		summary.CheapestMonth = month
	}
	summary.MeanWeather = stats.Mean(weather)
	summary.MeanCost = stats.Mean(cost)
	summary.MeanRecommended = stats.Mean(rec)
	summary.MedianDailyCost = stats.Median(costs)
	return summary
}

// Locate returns the region whose polygon contains the point
func (s *RegionService) Locate(ctx context.Context, lat, lng float64) (*models.Region, error) {
	if err := validateLatLng(lat, lng); err != nil {
		return nil, err
	}
	ref, err := s.maps.Reference(ctx)
	if err != nil {
		return nil, err
	}
	id, ok := ref.Index.Locate(lat, lng)
	if !ok {
		return nil, apperror.NotFound("region", fmt.Sprintf("%.5f,%.5f", lat, lng))
	}
	region, _ := ref.Region(id)
	return region, nil
}

// CreateRegion stores a new region
func (s *RegionService) CreateRegion(ctx context.Context, region *models.Region) error {
	if err := validateRegion(region); err != nil {
		return err
	}
	if err := s.repo.CreateRegion(ctx, region); err != nil {
		return backendUnlessClassified("create region", err)
	}
	s.invalidate("region created", region.ID)
	return nil
}

// UpsertRegion creates or replaces the region with id
func (s *RegionService) UpsertRegion(ctx context.Context, id string, region *models.Region) error {
	region.ID = id
	if err := validateRegion(region); err != nil {
		return err
	}
	if err := s.repo.UpsertRegion(ctx, region); err != nil {
		return backendUnlessClassified("upsert region", err)
	}
	s.invalidate("region saved", id)
	return nil
}

// DeleteRegion removes a region and its monthly data
func (s *RegionService) DeleteRegion(ctx context.Context, id string) error {
	if err := s.repo.DeleteRegion(ctx, id); err != nil {
		return backendUnlessClassified("delete region", err)
	}
	s.invalidate("region deleted", id)
	return nil
}

// UpsertMonthly stores one month of a region's metrics. The recommended
// score is recomputed from the weather and cost scores.
func (s *RegionService) UpsertMonthly(ctx context.Context, regionID string, month int, metric models.MonthlyMetric) (*models.MonthlyRow, error) {
	if month < 1 || month > 12 {
		return nil, apperror.Invalid("month", "must be between 1 and 12")
	}
	if err := validateScore("weatherScore", metric.WeatherScore); err != nil {
		return nil, err
	}
	if err := validateScore("costScore", metric.CostScore); err != nil {
		return nil, err
	}
	if metric.AvgDailyCost < 0 {
		return nil, apperror.Invalid("avgDailyCost", "must not be negative")
	}

	metric.RecommendedScore = scoring.RecommendedScore(metric.WeatherScore, metric.CostScore)
	row := models.MonthlyRow{RegionID: regionID, Month: month, MonthlyMetric: metric}
	if err := s.repo.UpsertMonthly(ctx, row); err != nil {
		return nil, backendUnlessClassified("upsert monthly data", err)
	}
	s.invalidate("monthly data saved", regionID)
	return &row, nil
}

func (s *RegionService) invalidate(msg, id string) {
	s.maps.Invalidate()
	s.log.Info(msg, zap.String("region_id", id))
}

func validateRegion(region *models.Region) error {
	if strings.TrimSpace(region.ID) == "" {
		return apperror.Invalid("id", "is required")
	}
	if strings.TrimSpace(region.Name.Default) == "" {
		return apperror.Invalid("name", "is required")
	}
	if _, err := spatial.NewRegionShape(region.ID, region.Geometry); err != nil {
		return apperror.Invalid("geometry", err.Error())
	}
	return nil
}

func validateScore(field string, v float64) error {
	if v < 0 || v > 10 {
		return apperror.Invalid(field, "must be between 0 and 10")
	}
	return nil
}

func validateLatLng(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return apperror.Invalid("lat", "must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return apperror.Invalid("lng", "must be between -180 and 180")
	}
	return nil
}

// backendUnlessClassified passes validation and not-found errors through and
// wraps everything else as a backend failure.
func backendUnlessClassified(op string, err error) error {
	if apperror.IsValidation(err) || apperror.IsNotFound(err) {
		return err
	}
	return apperror.Backend(op, err)
}
