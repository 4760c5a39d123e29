// Package mapdata serves map viewport data: the reference tables (regions and
// their monthly metrics) memoized for the process, and POIs cached per
// quantized viewport with concurrent requests for one key coalesced into a
// single backend call.
package mapdata

import (
	"context"

	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/spatial"
)

// POIQuery selects the POIs of one quantized viewport.
type POIQuery struct {
	Bounds spatial.QuantizedBounds
	// MaxPriority limits results to POIs with priority <= *MaxPriority. Nil
	// means no priority filter.
	MaxPriority *int
}

// QueryFor builds the POI query of a quantized viewport, applying the zoom
// priority ceiling.
func QueryFor(q spatial.QuantizedBounds) POIQuery {
	query := POIQuery{Bounds: q}
	if ceiling, ok := spatial.PriorityCeiling(q.Zoom); ok {
		query.MaxPriority = &ceiling
	}
	return query
}

// Backend reads the map tables.
type Backend interface {
	ListRegions(ctx context.Context) ([]*models.Region, error)
	ListMonthlyData(ctx context.Context) ([]models.MonthlyRow, error)
	ListPOIsInBounds(ctx context.Context, query POIQuery) ([]*models.POI, error)
}
