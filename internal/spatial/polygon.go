package spatial

import (
	"errors"
	"fmt"

	"github.com/golang/geo/s2"

	"github.com/jengzang/travel-atlas-go/internal/models"
)

// RegionShape is a region polygon prepared for point containment tests.
type RegionShape struct {
	ID      string
	polygon *s2.Polygon
	bound   s2.Rect
}

// NewRegionShape builds a shape from [lng, lat] rings. The first ring is the
// outer boundary; later rings are holes. Ring orientation is not required and
// a repeated closing vertex is ignored.
func NewRegionShape(id string, geom models.Polygon) (*RegionShape, error) {
	if len(geom) == 0 {
		return nil, errors.New("empty geometry")
	}
	loops := make([]*s2.Loop, 0, len(geom))
	for i, ring := range geom {
		points := ringPoints(ring)
		if len(points) < 3 {
			return nil, fmt.Errorf("ring %d has %d distinct vertices, need 3", i, len(points))
		}
		loop := s2.LoopFromPoints(points)
		if err := loop.Validate(); err != nil {
			return nil, fmt.Errorf("ring %d: %w", i, err)
		}
		loop.Normalize()
		loops = append(loops, loop)
	}
	polygon := s2.PolygonFromLoops(loops)
	return &RegionShape{ID: id, polygon: polygon, bound: polygon.RectBound()}, nil
}

func ringPoints(ring models.Ring) []s2.Point {
	if n := len(ring); n > 1 && ring[0] == ring[n-1] {
		ring = ring[:n-1]
	}
	points := make([]s2.Point, 0, len(ring))
	for _, c := range ring {
		points = append(points, s2.PointFromLatLng(s2.LatLngFromDegrees(c[1], c[0])))
	}
	return points
}

// ContainsPoint reports whether the point lies inside the region.
func (s *RegionShape) ContainsPoint(lat, lng float64) bool {
	ll := s2.LatLngFromDegrees(lat, lng)
	if !s.bound.ContainsLatLng(ll) {
		return false
	}
	return s.polygon.ContainsPoint(s2.PointFromLatLng(ll))
}

// Bounds returns the bounding box of the region.
func (s *RegionShape) Bounds() MapBounds {
	lo, hi := s.bound.Lo(), s.bound.Hi()
	return MapBounds{
		MinLat: lo.Lat.Degrees(),
		MaxLat: hi.Lat.Degrees(),
		MinLng: lo.Lng.Degrees(),
		MaxLng: hi.Lng.Degrees(),
	}
}

// RegionIndex answers which region contains a point.
type RegionIndex struct {
	shapes  []*RegionShape
	skipped []string
}

// NewRegionIndex indexes regions, skipping any whose geometry is unusable.
func NewRegionIndex(regions []*models.Region) *RegionIndex {
	ix := &RegionIndex{}
	for _, r := range regions {
		shape, err := NewRegionShape(r.ID, r.Geometry)
		if err != nil {
			ix.skipped = append(ix.skipped, r.ID)
			continue
		}
		ix.shapes = append(ix.shapes, shape)
	}
	return ix
}

// Locate returns the id of the first region containing the point.
func (ix *RegionIndex) Locate(lat, lng float64) (string, bool) {
	for _, s := range ix.shapes {
		if s.ContainsPoint(lat, lng) {
			return s.ID, true
		}
	}
	return "", false
}

// Skipped lists region ids left out of the index for invalid geometry.
func (ix *RegionIndex) Skipped() []string { return ix.skipped }
