package repository

import (
	"context"

	"github.com/jengzang/travel-atlas-go/internal/mapdata"
	"github.com/jengzang/travel-atlas-go/internal/models"
)

// MapBackend serves the map tables to the mapdata cache
type MapBackend struct {
	Regions *RegionRepository
	POIs    *POIRepository
}

var _ mapdata.Backend = (*MapBackend)(nil)

// NewMapBackend creates a map backend over the region and POI repositories
func NewMapBackend(regions *RegionRepository, pois *POIRepository) *MapBackend {
	return &MapBackend{Regions: regions, POIs: pois}
}

// ListRegions implements mapdata.Backend
func (b *MapBackend) ListRegions(ctx context.Context) ([]*models.Region, error) {
	return b.Regions.ListRegions(ctx)
}

// ListMonthlyData implements mapdata.Backend
func (b *MapBackend) ListMonthlyData(ctx context.Context) ([]models.MonthlyRow, error) {
	return b.Regions.ListMonthlyData(ctx)
}

// ListPOIsInBounds implements mapdata.Backend
func (b *MapBackend) ListPOIsInBounds(ctx context.Context, query mapdata.POIQuery) ([]*models.POI, error) {
	return b.POIs.ListPOIsInBounds(ctx, query)
}
