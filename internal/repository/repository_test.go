package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
	"github.com/jengzang/travel-atlas-go/internal/database"
	"github.com/jengzang/travel-atlas-go/internal/mapdata"
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/spatial"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "atlas.db"),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.NewMigrationManager(db, zap.NewNop()).RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	return db
}

func intPtr(v int) *int { return &v }

func square(minLng, minLat, size float64) models.Polygon {
	return models.Polygon{{
		{minLng, minLat}, {minLng + size, minLat}, {minLng + size, minLat + size},
		{minLng, minLat + size}, {minLng, minLat},
	}}
}

func TestRegionRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRegionRepository(openTestDB(t))

	region := &models.Region{
		ID:          "algarve",
		Name:        models.LocalizedString("Algarve", "Algarve PT"),
		Country:     "PT",
		Description: models.LocalizedString("Beaches", ""),
		Geometry:    square(-9, 37, 1),
	}
	if err := repo.CreateRegion(ctx, region); err != nil {
		t.Fatalf("CreateRegion: %v", err)
	}
	if err := repo.CreateRegion(ctx, region); !apperror.IsValidation(err) {
		t.Fatalf("duplicate CreateRegion error = %v, want validation error", err)
	}

	row := models.MonthlyRow{RegionID: "algarve", Month: 7}
	row.WeatherScore, row.CostScore, row.RecommendedScore = 9, 4, 7
	row.WeatherDesc = models.LocalizedString("Hot", "Quente")
	row.Highlights = models.LocalizedList([]string{"beach"}, nil)
	row.AvgDailyCost = 120
	if err := repo.UpsertMonthly(ctx, row); err != nil {
		t.Fatalf("UpsertMonthly: %v", err)
	}
	row.WeatherScore = 8.5
	if err := repo.UpsertMonthly(ctx, row); err != nil {
		t.Fatalf("UpsertMonthly replace: %v", err)
	}

	regions, err := repo.ListRegions(ctx)
	if err != nil {
		t.Fatalf("ListRegions: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("len(regions) = %d, want 1", len(regions))
	}
	got := regions[0]
	if got.Name.Resolve(models.LocalePT) != "Algarve PT" || got.Description.Resolve(models.LocalePT) != "Beaches" {
		t.Fatalf("localized fields = %+v / %+v", got.Name, got.Description)
	}
	if len(got.Geometry) != 1 || len(got.Geometry[0]) != 5 || got.Geometry[0][2] != [2]float64{-8, 38} {
		t.Fatalf("geometry = %v", got.Geometry)
	}

	rows, err := repo.ListMonthlyData(ctx)
	if err != nil {
		t.Fatalf("ListMonthlyData: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].WeatherScore != 8.5 || rows[0].WeatherDesc.Resolve(models.LocalePT) != "Quente" {
		t.Fatalf("row = %+v", rows[0])
	}
	if h := rows[0].Highlights.Resolve(models.LocalePT); len(h) != 1 || h[0] != "beach" {
		t.Fatalf("highlights(pt) = %v, want fallback [beach]", h)
	}
}

func TestRegionRepositoryMonthlyRequiresRegion(t *testing.T) {
	repo := NewRegionRepository(openTestDB(t))
	err := repo.UpsertMonthly(context.Background(), models.MonthlyRow{RegionID: "nowhere", Month: 1})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("UpsertMonthly error = %v, want not found", err)
	}
}

func TestRegionRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewRegionRepository(openTestDB(t))

	if err := repo.UpsertRegion(ctx, &models.Region{ID: "r1", Name: models.LocalizedString("R1", ""), Geometry: square(0, 0, 1)}); err != nil {
		t.Fatalf("UpsertRegion: %v", err)
	}
	if err := repo.UpsertMonthly(ctx, models.MonthlyRow{RegionID: "r1", Month: 3}); err != nil {
		t.Fatalf("UpsertMonthly: %v", err)
	}
	if err := repo.DeleteRegion(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRegion: %v", err)
	}
	rows, err := repo.ListMonthlyData(ctx)
	if err != nil {
		t.Fatalf("ListMonthlyData: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("monthly rows after delete = %d, want 0", len(rows))
	}
	if err := repo.DeleteRegion(ctx, "r1"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second DeleteRegion error = %v, want not found", err)
	}
}

func seedPOIs(t *testing.T, repo *POIRepository) {
	t.Helper()
	pois := []*models.POI{
		{ID: "wonder", Name: models.LocalizedString("Wonder", "Maravilha"), Category: models.CategoryWonder, Coordinates: [2]float64{0.2, 0.2}, Priority: intPtr(0), ImageGallery: []string{"a.jpg", "b.jpg"}},
		{ID: "museum", Name: models.LocalizedString("Museum", ""), Category: models.CategoryCulture, Coordinates: [2]float64{0.3, 0.25}, Priority: intPtr(3)},
		{ID: "cafe", Name: models.LocalizedString("Cafe", ""), Category: models.CategoryCity, Coordinates: [2]float64{0.4, 0.4}},
		{ID: "far", Name: models.LocalizedString("Far", ""), Category: models.CategoryNature, Coordinates: [2]float64{12, 12}, Priority: intPtr(0), Highlight: true},
	}
	for _, p := range pois {
		if err := repo.CreatePOI(context.Background(), p); err != nil {
			t.Fatalf("CreatePOI(%s): %v", p.ID, err)
		}
	}
}

func poiIDs(pois []*models.POI) []string {
	ids := make([]string, len(pois))
	for i, p := range pois {
		ids[i] = p.ID
	}
	return ids
}

func TestPOIRepositoryListInBounds(t *testing.T) {
	ctx := context.Background()
	repo := NewPOIRepository(openTestDB(t))
	seedPOIs(t, repo)

	tests := []struct {
		name string
		zoom float64
		want []string
	}{
		{"world zoom keeps priority 0", 3, []string{"wonder"}},
		{"region zoom keeps priority <= 5", 7, []string{"museum", "wonder"}},
		{"street zoom keeps everything", 12, []string{"cafe", "museum", "wonder"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := spatial.Quantize(spatial.MapBounds{MinLat: 0, MaxLat: 0.5, MinLng: 0, MaxLng: 0.5, Zoom: tt.zoom})
			pois, err := repo.ListPOIsInBounds(ctx, mapdata.QueryFor(q))
			if err != nil {
				t.Fatalf("ListPOIsInBounds: %v", err)
			}
			got := poiIDs(pois)
			if len(got) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ids = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestPOIRepositoryGetAndDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewPOIRepository(db)
	seedPOIs(t, repo)

	poi, err := repo.GetPOI(ctx, "wonder")
	if err != nil {
		t.Fatalf("GetPOI: %v", err)
	}
	if poi.Name.Resolve(models.LocalePT) != "Maravilha" || poi.Priority == nil || *poi.Priority != 0 {
		t.Fatalf("poi = %+v", poi)
	}
	if len(poi.ImageGallery) != 2 || poi.Lat() != 0.2 || poi.Lng() != 0.2 {
		t.Fatalf("poi gallery/coords = %v %v", poi.ImageGallery, poi.Coordinates)
	}

	far, err := repo.GetPOI(ctx, "far")
	if err != nil {
		t.Fatalf("GetPOI(far): %v", err)
	}
	if !far.Highlight {
		t.Fatal("far.Highlight = false, want true")
	}

	if err := repo.CreatePOI(ctx, poi); !apperror.IsValidation(err) {
		t.Fatalf("duplicate CreatePOI error = %v, want validation error", err)
	}

	reviews := NewReviewRepository(db)
	if err := reviews.CreateReview(ctx, &models.Review{ID: "rv1", UserID: "u1", POIID: "wonder", Rating: 5, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if err := repo.DeletePOI(ctx, "wonder"); err != nil {
		t.Fatalf("DeletePOI: %v", err)
	}
	if _, err := repo.GetPOI(ctx, "wonder"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetPOI after delete error = %v, want not found", err)
	}
	if err := repo.DeletePOI(ctx, "wonder"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second DeletePOI error = %v, want not found", err)
	}
}

func TestPOIRepositoryUpsertClearsPriority(t *testing.T) {
	ctx := context.Background()
	repo := NewPOIRepository(openTestDB(t))
	seedPOIs(t, repo)

	poi, err := repo.GetPOI(ctx, "museum")
	if err != nil {
		t.Fatalf("GetPOI: %v", err)
	}
	poi.Priority = nil
	if err := repo.UpsertPOI(ctx, poi); err != nil {
		t.Fatalf("UpsertPOI: %v", err)
	}
	got, err := repo.GetPOI(ctx, "museum")
	if err != nil {
		t.Fatalf("GetPOI: %v", err)
	}
	if got.Priority != nil {
		t.Fatalf("priority = %d, want nil", *got.Priority)
	}
}

func TestTripRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository(openTestDB(t))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	trips := []*models.Trip{
		{ID: "t1", UserID: "u1", RegionID: "algarve", Title: "Spring", StartDate: "2026-03-01", EndDate: "2026-03-05", CreatedAt: base},
		{ID: "t2", UserID: "u1", RegionID: "minas", Title: "Summer", StartDate: "2026-07-01", EndDate: "2026-07-10", CreatedAt: base},
		{ID: "t3", UserID: "u2", RegionID: "algarve", Title: "Other", StartDate: "2026-05-01", EndDate: "2026-05-02", CreatedAt: base},
	}
	for _, trip := range trips {
		if err := repo.CreateTrip(ctx, trip); err != nil {
			t.Fatalf("CreateTrip: %v", err)
		}
	}

	got, total, err := repo.GetTrips(ctx, "u1", models.TripFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("GetTrips: %v", err)
	}
	if total != 2 || len(got) != 2 || got[0].ID != "t2" {
		t.Fatalf("trips = %+v total %d, want [t2 t1]", got, total)
	}
	if !got[0].CreatedAt.Equal(base) {
		t.Fatalf("CreatedAt = %v, want %v", got[0].CreatedAt, base)
	}

	got, total, err = repo.GetTrips(ctx, "u1", models.TripFilter{RegionID: "algarve", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("GetTrips filtered: %v", err)
	}
	if total != 1 || got[0].ID != "t1" {
		t.Fatalf("filtered trips = %+v, want [t1]", got)
	}

	if err := repo.DeleteTrip(ctx, "u1", "t3"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("deleting another user's trip error = %v, want not found", err)
	}
	if err := repo.DeleteTrip(ctx, "u2", "t3"); err != nil {
		t.Fatalf("DeleteTrip: %v", err)
	}
}

func TestReviewRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedPOIs(t, NewPOIRepository(db))
	repo := NewReviewRepository(db)

	first := &models.Review{ID: "a", UserID: "u1", POIID: "wonder", Rating: 4, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	second := &models.Review{ID: "b", UserID: "u2", POIID: "wonder", Rating: 2, Comment: "crowded", CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	for _, rv := range []*models.Review{first, second} {
		if err := repo.CreateReview(ctx, rv); err != nil {
			t.Fatalf("CreateReview(%s): %v", rv.ID, err)
		}
	}
	dup := &models.Review{ID: "c", UserID: "u1", POIID: "wonder", Rating: 1, CreatedAt: time.Now()}
	if err := repo.CreateReview(ctx, dup); !apperror.IsValidation(err) {
		t.Fatalf("duplicate CreateReview error = %v, want validation error", err)
	}

	reviews, err := repo.ListReviews(ctx, "wonder")
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(reviews) != 2 || reviews[0].ID != "b" || reviews[0].Comment != "crowded" {
		t.Fatalf("reviews = %+v, want newest first", reviews)
	}
}

func TestMapBackendServesMapData(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	regions := NewRegionRepository(db)
	pois := NewPOIRepository(db)
	seedPOIs(t, pois)

	if err := regions.UpsertRegion(ctx, &models.Region{ID: "r1", Name: models.LocalizedString("R1", ""), Geometry: square(0, 0, 1)}); err != nil {
		t.Fatalf("UpsertRegion: %v", err)
	}
	if err := regions.UpsertMonthly(ctx, models.MonthlyRow{RegionID: "r1", Month: 1}); err != nil {
		t.Fatalf("UpsertMonthly: %v", err)
	}

	svc := mapdata.NewService(NewMapBackend(regions, pois), mapdata.Options{})
	data, err := svc.Load(ctx, spatial.MapBounds{MinLat: 0, MaxLat: 0.5, MinLng: 0, MaxLng: 0.5, Zoom: 12})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(data.Reference.Regions) != 1 || data.Reference.Regions[0].Metric(1) == nil {
		t.Fatalf("reference = %+v", data.Reference.Regions)
	}
	if len(data.POIs) != 3 {
		t.Fatalf("pois = %v, want 3", poiIDs(data.POIs))
	}
	if id, ok := data.Reference.Index.Locate(0.5, 0.5); !ok || id != "r1" {
		t.Fatalf("Locate = %q, %v", id, ok)
	}
}

func TestUniqueViolationDetection(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	insert := `INSERT INTO regions (id, name, name_pt, country, description, description_pt, geometry)
		VALUES ($1, 'Algarve', '', 'PT', '', '', '[]')`
	if _, err := db.ExecContext(ctx, insert, "algarve"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := db.ExecContext(ctx, insert, "algarve")
	if err == nil || !isUniqueViolation(err) {
		t.Fatalf("duplicate insert error = %v, want unique violation", err)
	}
	if !isUniqueViolation(fmt.Errorf("wrapped: %w", err)) {
		t.Fatal("wrapped unique violation not detected")
	}

	_, err = db.ExecContext(ctx, `INSERT INTO region_monthly_data (region_id, month, weather_score, cost_score, recommended_score)
		VALUES ($1, 7, 5, 5, 5)`, "nowhere")
	if err == nil || isUniqueViolation(err) {
		t.Fatalf("foreign key error = %v, want a non-unique constraint failure", err)
	}
}

func TestConcurrentCreatesReportDuplicates(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	regions := NewRegionRepository(db)
	pois := NewPOIRepository(db)

	const workers = 8
	var wg sync.WaitGroup
	regionErrs := make([]error, workers)
	poiErrs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			regionErrs[i] = regions.CreateRegion(ctx, &models.Region{
				ID: "algarve", Name: models.LocalizedString("Algarve", ""), Country: "PT", Geometry: square(-9, 37, 1),
			})
			poiErrs[i] = pois.CreatePOI(ctx, &models.POI{
				ID: "benagil", Name: models.LocalizedString("Benagil", ""), Category: models.CategoryBeach,
				Coordinates: [2]float64{-8.4, 37.1},
			})
		}(i)
	}
	wg.Wait()

	for name, errs := range map[string][]error{"CreateRegion": regionErrs, "CreatePOI": poiErrs} {
		created := 0
		for _, err := range errs {
			switch {
			case err == nil:
				created++
			case !apperror.IsValidation(err):
				t.Fatalf("%s error = %v, want validation error", name, err)
			}
		}
		if created != 1 {
			t.Fatalf("%s succeeded %d times, want 1", name, created)
		}
	}
}
