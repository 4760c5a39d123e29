package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
	"github.com/jengzang/travel-atlas-go/internal/database"
	"github.com/jengzang/travel-atlas-go/internal/mapdata"
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/repository"
	"github.com/jengzang/travel-atlas-go/internal/spatial"
)

type fixture struct {
	maps    *mapdata.Service
	regions *RegionService
	pois    *POIService
	trips   *TripService
	reviews *ReviewService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(database.Config{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "atlas.db")}, zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.NewMigrationManager(db, zap.NewNop()).RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	regionRepo := repository.NewRegionRepository(db)
	poiRepo := repository.NewPOIRepository(db)
	maps := mapdata.NewService(repository.NewMapBackend(regionRepo, poiRepo), mapdata.Options{})
	f := &fixture{
		maps:    maps,
		regions: NewRegionService(maps, regionRepo, zap.NewNop()),
		pois:    NewPOIService(maps, poiRepo, zap.NewNop()),
		trips:   NewTripService(repository.NewTripRepository(db), maps),
		reviews: NewReviewService(repository.NewReviewRepository(db), poiRepo),
	}

	region := &models.Region{
		ID:       "algarve",
		Name:     models.LocalizedString("Algarve", ""),
		Country:  "PT",
		Geometry: models.Polygon{{{-9, 37}, {-7.4, 37}, {-7.4, 37.5}, {-9, 37.5}, {-9, 37}}},
	}
	if err := f.regions.CreateRegion(ctx, region); err != nil {
		t.Fatalf("CreateRegion: %v", err)
	}
	return f
}

func metric(weather, cost, daily float64) models.MonthlyMetric {
	return models.MonthlyMetric{WeatherScore: weather, CostScore: cost, AvgDailyCost: daily}
}

func TestRegionWritesInvalidateReference(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	before, err := f.regions.GetRegion(ctx, "algarve")
	if err != nil {
		t.Fatalf("GetRegion: %v", err)
	}
	if before.Metric(7) != nil {
		t.Fatal("month 7 present before upsert")
	}

	row, err := f.regions.UpsertMonthly(ctx, "algarve", 7, metric(8, 6, 140))
	if err != nil {
		t.Fatalf("UpsertMonthly: %v", err)
	}
	if row.RecommendedScore != 7.2 {
		t.Fatalf("RecommendedScore = %v, want 7.2", row.RecommendedScore)
	}

	after, err := f.regions.GetRegion(ctx, "algarve")
	if err != nil {
		t.Fatalf("GetRegion: %v", err)
	}
	if m := after.Metric(7); m == nil || m.RecommendedScore != 7.2 {
		t.Fatalf("month 7 after upsert = %+v, want recommended 7.2", m)
	}
}

func TestUpsertMonthlyValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name   string
		region string
		month  int
		metric models.MonthlyMetric
	}{
		{"month zero", "algarve", 0, metric(5, 5, 0)},
		{"month thirteen", "algarve", 13, metric(5, 5, 0)},
		{"weather out of range", "algarve", 1, metric(11, 5, 0)},
		{"negative cost", "algarve", 1, metric(5, -1, 0)},
		{"negative daily cost", "algarve", 1, metric(5, 5, -3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.regions.UpsertMonthly(ctx, tt.region, tt.month, tt.metric); !apperror.IsValidation(err) {
				t.Fatalf("UpsertMonthly error = %v, want validation error", err)
			}
		})
	}

	if _, err := f.regions.UpsertMonthly(ctx, "nowhere", 1, metric(5, 5, 0)); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("UpsertMonthly(unknown region) error = %v, want not found", err)
	}
}

func TestRegionValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.regions.CreateRegion(ctx, &models.Region{ID: "x", Name: models.LocalizedString("X", "")}); !apperror.IsValidation(err) {
		t.Fatalf("CreateRegion without geometry error = %v, want validation error", err)
	}
	if err := f.regions.CreateRegion(ctx, &models.Region{ID: "algarve", Name: models.LocalizedString("Again", ""),
		Geometry: models.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}}); !apperror.IsValidation(err) {
		t.Fatalf("duplicate CreateRegion error = %v, want validation error", err)
	}
}

func TestRegionSummaryAndLocate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for month, m := range map[int]models.MonthlyMetric{
		1: metric(3, 9, 60),
		6: metric(9, 5, 120),
		7: metric(10, 4, 150),
		9: metric(8, 7, 90),
	} {
		if _, err := f.regions.UpsertMonthly(ctx, "algarve", month, m); err != nil {
			t.Fatalf("UpsertMonthly(%d): %v", month, err)
		}
	}

	summary, err := f.regions.GetSummary(ctx, "algarve")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	// recommended: 1 -> 5.4, 6 -> 7.4, 7 -> 7.6, 9 -> 7.6
	if got := summary.BestMonths; len(got) != 3 || got[0] != 7 || got[1] != 9 || got[2] != 6 {
		t.Fatalf("BestMonths = %v, want [7 9 6]", got)
	}
	if summary.CheapestMonth != 1 {
		t.Fatalf("CheapestMonth = %d, want 1", summary.CheapestMonth)
	}
	if summary.MonthsWithData != 4 || summary.MeanWeather != 7.5 || summary.MedianDailyCost != 105 {
		t.Fatalf("summary = %+v", summary)
	}

	region, err := f.regions.Locate(ctx, 37.2, -8.0)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if region.ID != "algarve" {
		t.Fatalf("Locate = %s, want algarve", region.ID)
	}
	if _, err := f.regions.Locate(ctx, 10, 10); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Locate outside error = %v, want not found", err)
	}
	if _, err := f.regions.Locate(ctx, 95, 0); !apperror.IsValidation(err) {
		t.Fatalf("Locate(95, 0) error = %v, want validation error", err)
	}
}

func TestSummarizeEmptyRegion(t *testing.T) {
	s := Summarize(&models.Region{ID: "empty"})
	if s.MonthsWithData != 0 || len(s.BestMonths) != 0 || s.CheapestMonth != 0 {
		t.Fatalf("summary = %+v, want empty", s)
	}
}

func TestDeleteRegion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.regions.DeleteRegion(ctx, "algarve"); err != nil {
		t.Fatalf("DeleteRegion: %v", err)
	}
	if _, err := f.regions.GetRegion(ctx, "algarve"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetRegion after delete error = %v, want not found", err)
	}
	if err := f.regions.DeleteRegion(ctx, "algarve"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second DeleteRegion error = %v, want not found", err)
	}
}

func intPtr(v int) *int { return &v }

func TestPOIWritesInvalidateViewportCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	view := spatial.MapBounds{MinLat: 37, MaxLat: 37.5, MinLng: -9, MaxLng: -8.5, Zoom: 12}

	data, err := f.maps.Load(ctx, view)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(data.POIs) != 0 {
		t.Fatalf("pois = %d, want 0", len(data.POIs))
	}

	poi := &models.POI{ID: "benagil", Name: models.LocalizedString("Benagil", ""), Category: models.CategoryBeach, Coordinates: [2]float64{-8.8, 37.1}, Priority: intPtr(1)}
	if err := f.pois.CreatePOI(ctx, poi); err != nil {
		t.Fatalf("CreatePOI: %v", err)
	}

	data, err = f.maps.Load(ctx, view)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(data.POIs) != 1 || data.POIs[0].ID != "benagil" {
		t.Fatalf("pois after create = %d, want [benagil]", len(data.POIs))
	}
}

func TestPOIValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name string
		poi  models.POI
	}{
		{"missing name", models.POI{ID: "a", Category: models.CategoryBeach}},
		{"unknown category", models.POI{ID: "a", Name: models.LocalizedString("A", ""), Category: "mall"}},
		{"latitude out of range", models.POI{ID: "a", Name: models.LocalizedString("A", ""), Category: models.CategoryBeach, Coordinates: [2]float64{0, 91}}},
		{"longitude out of range", models.POI{ID: "a", Name: models.LocalizedString("A", ""), Category: models.CategoryBeach, Coordinates: [2]float64{-181, 0}}},
		{"negative priority", models.POI{ID: "a", Name: models.LocalizedString("A", ""), Category: models.CategoryBeach, Priority: intPtr(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poi := tt.poi
			if err := f.pois.CreatePOI(ctx, &poi); !apperror.IsValidation(err) {
				t.Fatalf("CreatePOI error = %v, want validation error", err)
			}
		})
	}
}

func TestNearby(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, p := range []*models.POI{
		{ID: "near", Name: models.LocalizedString("Near", "Perto"), Category: models.CategoryBeach, Coordinates: [2]float64{-8.0, 37.05}},
		{ID: "nearest", Name: models.LocalizedString("Nearest", ""), Category: models.CategoryCity, Coordinates: [2]float64{-8.0, 37.01}},
		{ID: "far", Name: models.LocalizedString("Far", ""), Category: models.CategoryNature, Coordinates: [2]float64{-8.0, 38.0}},
	} {
		if err := f.pois.CreatePOI(ctx, p); err != nil {
			t.Fatalf("CreatePOI(%s): %v", p.ID, err)
		}
	}

	got, err := f.pois.Nearby(ctx, models.NearbyFilter{Lat: 37.0, Lng: -8.0, RadiusKm: 20, Locale: "pt-BR"})
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if len(got) != 2 || got[0].ID != "nearest" || got[1].ID != "near" {
		t.Fatalf("Nearby = %+v, want [nearest near]", got)
	}
	if got[1].Name != "Perto" {
		t.Fatalf("localized name = %q, want Perto", got[1].Name)
	}
	if got[0].DistanceKm < 1.0 || got[0].DistanceKm > 1.2 {
		t.Fatalf("DistanceKm = %v, want about 1.1", got[0].DistanceKm)
	}

	limited, err := f.pois.Nearby(ctx, models.NearbyFilter{Lat: 37.0, Lng: -8.0, RadiusKm: 200, Limit: 1})
	if err != nil {
		t.Fatalf("Nearby limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "nearest" {
		t.Fatalf("limited = %+v, want [nearest]", limited)
	}

	if _, err := f.pois.Nearby(ctx, models.NearbyFilter{Lat: 37, Lng: -8, RadiusKm: 5000}); !apperror.IsValidation(err) {
		t.Fatalf("Nearby radius 5000 error = %v, want validation error", err)
	}
}

func TestTrips(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.trips.now = func() time.Time { return time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC) }

	trip, err := f.trips.CreateTrip(ctx, "u1", models.TripInput{RegionID: "algarve", Title: " Easter ", StartDate: "2026-04-02", EndDate: "2026-04-06"})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	if trip.ID == "" || trip.Title != "Easter" || trip.UserID != "u1" {
		t.Fatalf("trip = %+v", trip)
	}

	invalid := []models.TripInput{
		{RegionID: "algarve", Title: "Backwards", StartDate: "2026-04-06", EndDate: "2026-04-02"},
		{RegionID: "algarve", Title: "Bad date", StartDate: "04/02/2026", EndDate: "2026-04-06"},
		{RegionID: "algarve", StartDate: "2026-04-02", EndDate: "2026-04-06"},
		{RegionID: "atlantis", Title: "Lost", StartDate: "2026-04-02", EndDate: "2026-04-06"},
	}
	for _, in := range invalid {
		if _, err := f.trips.CreateTrip(ctx, "u1", in); !apperror.IsValidation(err) {
			t.Fatalf("CreateTrip(%+v) error = %v, want validation error", in, err)
		}
	}

	page, err := f.trips.GetTrips(ctx, "u1", models.TripFilter{})
	if err != nil {
		t.Fatalf("GetTrips: %v", err)
	}
	if page.Total != 1 || page.Page != 1 || page.PageSize != 100 || page.TotalPages != 1 {
		t.Fatalf("page = %+v", page)
	}

	if err := f.trips.DeleteTrip(ctx, "u2", trip.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("DeleteTrip by other user error = %v, want not found", err)
	}
	if err := f.trips.DeleteTrip(ctx, "u1", trip.ID); err != nil {
		t.Fatalf("DeleteTrip: %v", err)
	}
}

func TestReviews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	poi := &models.POI{ID: "sagres", Name: models.LocalizedString("Sagres", ""), Category: models.CategoryLandmark, Coordinates: [2]float64{-8.94, 37.0}}
	if err := f.pois.CreatePOI(ctx, poi); err != nil {
		t.Fatalf("CreatePOI: %v", err)
	}

	if _, err := f.reviews.CreateReview(ctx, "u1", "sagres", models.ReviewInput{Rating: 6}); !apperror.IsValidation(err) {
		t.Fatalf("rating 6 error = %v, want validation error", err)
	}
	if _, err := f.reviews.CreateReview(ctx, "u1", "missing", models.ReviewInput{Rating: 4}); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("unknown poi error = %v, want not found", err)
	}
	for user, rating := range map[string]int{"u1": 5, "u2": 4, "u3": 4} {
		if _, err := f.reviews.CreateReview(ctx, user, "sagres", models.ReviewInput{Rating: rating}); err != nil {
			t.Fatalf("CreateReview(%s): %v", user, err)
		}
	}
	if _, err := f.reviews.CreateReview(ctx, "u1", "sagres", models.ReviewInput{Rating: 1}); !apperror.IsValidation(err) {
		t.Fatalf("duplicate review error = %v, want validation error", err)
	}

	list, err := f.reviews.ListReviews(ctx, "sagres")
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if list.Count != 3 || list.AverageRating != 4.33 {
		t.Fatalf("list = count %d avg %v, want 3 / 4.33", list.Count, list.AverageRating)
	}
}
