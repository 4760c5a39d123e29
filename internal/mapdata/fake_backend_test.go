package mapdata

import (
	"context"
	"sync"

	"github.com/jengzang/travel-atlas-go/internal/models"
)

// fakeBackend serves fixed tables and counts calls. When gate is set,
// ListPOIsInBounds signals entered and blocks until gate is closed.
type fakeBackend struct {
	mu sync.Mutex

	regions []models.Region
	rows    []models.MonthlyRow
	pois    []*models.POI

	regionErr error
	poiErr    error

	gate    chan struct{}
	entered chan struct{}

	regionCalls  int
	monthlyCalls int
	poiCalls     int
	queries      []POIQuery
}

func (f *fakeBackend) ListRegions(ctx context.Context) ([]*models.Region, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regionCalls++
	if f.regionErr != nil {
		return nil, f.regionErr
	}
	out := make([]*models.Region, 0, len(f.regions))
	for i := range f.regions {
		r := f.regions[i]
		out = append(out, &r)
	}
	return out, nil
}

func (f *fakeBackend) ListMonthlyData(ctx context.Context) ([]models.MonthlyRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.monthlyCalls++
	return append([]models.MonthlyRow(nil), f.rows...), nil
}

func (f *fakeBackend) ListPOIsInBounds(ctx context.Context, query POIQuery) ([]*models.POI, error) {
	f.mu.Lock()
	f.poiCalls++
	f.queries = append(f.queries, query)
	gate, entered, err := f.gate, f.entered, f.poiErr
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}

	var out []*models.POI
	for _, p := range f.pois {
		if !query.Bounds.Contains(p.Lat(), p.Lng()) {
			continue
		}
		if query.MaxPriority != nil && (p.Priority == nil || *p.Priority > *query.MaxPriority) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeBackend) calls() (regions, monthly, pois int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regionCalls, f.monthlyCalls, f.poiCalls
}

func (f *fakeBackend) setPOIErr(err error) {
	f.mu.Lock()
	f.poiErr = err
	f.mu.Unlock()
}

func (f *fakeBackend) setRegionErr(err error) {
	f.mu.Lock()
	f.regionErr = err
	f.mu.Unlock()
}

func intPtr(v int) *int { return &v }

func newFixtureBackend() *fakeBackend {
	return &fakeBackend{
		regions: []models.Region{
			{
				ID:      "algarve",
				Name:    models.LocalizedString("Algarve", ""),
				Country: "Portugal",
				Geometry: models.Polygon{{
					{-9, 36.9}, {-7.4, 36.9}, {-7.4, 37.5}, {-9, 37.5}, {-9, 36.9},
				}},
			},
			{
				ID:      "minas",
				Name:    models.LocalizedString("Minas Gerais", "Minas Gerais"),
				Country: "Brazil",
				Geometry: models.Polygon{{
					{-51, -23}, {-40, -23}, {-40, -14}, {-51, -14}, {-51, -23},
				}},
			},
		},
		rows: []models.MonthlyRow{
			{RegionID: "algarve", Month: 7, MonthlyMetric: models.MonthlyMetric{WeatherScore: 9, CostScore: 5, RecommendedScore: 7.4}},
			{RegionID: "algarve", Month: 1, MonthlyMetric: models.MonthlyMetric{WeatherScore: 5, CostScore: 8, RecommendedScore: 6.2}},
			{RegionID: "minas", Month: 7, MonthlyMetric: models.MonthlyMetric{WeatherScore: 8, CostScore: 9, RecommendedScore: 8.4}},
		},
		pois: []*models.POI{
			{ID: "wonder", Name: models.LocalizedString("Wonder", ""), Category: models.CategoryWonder, Coordinates: [2]float64{0.2, 0.2}, Priority: intPtr(0)},
			{ID: "museum", Name: models.LocalizedString("Museum", "Museu"), Category: models.CategoryCulture, Coordinates: [2]float64{0.3, 0.25}, Priority: intPtr(3)},
			{ID: "cafe", Name: models.LocalizedString("Cafe", ""), Category: models.CategoryCity, Coordinates: [2]float64{0.4, 0.4}},
			{ID: "far", Name: models.LocalizedString("Far", ""), Category: models.CategoryNature, Coordinates: [2]float64{12, 12}, Priority: intPtr(0)},
		},
	}
}
