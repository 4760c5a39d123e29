package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
	EarthRadiusKm     = 6371.0    // Earth's mean radius in kilometers
)

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// DestinationPoint calculates the destination point given a start point, bearing, and distance
// bearing: degrees (0-360), distance: meters
func DestinationPoint(lat, lon, bearing, distance float64) (float64, float64) {
	p := s2.LatLngFromDegrees(lat, lon)
	bearingRad := bearing * math.Pi / 180
	angularDistance := distance / EarthRadiusMeters

	latRad := p.Lat.Radians()
	lonRad := p.Lng.Radians()

	lat2 := math.Asin(math.Sin(latRad)*math.Cos(angularDistance) +
		math.Cos(latRad)*math.Sin(angularDistance)*math.Cos(bearingRad))

	lon2 := lonRad + math.Atan2(
		math.Sin(bearingRad)*math.Sin(angularDistance)*math.Cos(latRad),
		math.Cos(angularDistance)-math.Sin(latRad)*math.Sin(lat2))

	return lat2 * 180 / math.Pi, lon2 * 180 / math.Pi
}

// BoundsAround returns a box enclosing the circle of radius meters around a
// point, clamped to valid coordinates. Used as a SQL prefilter before exact
// distance checks. Circles reaching a pole get the full longitude range.
func BoundsAround(lat, lng, radius float64) MapBounds {
	dLat := radius / EarthRadiusMeters * 180 / math.Pi
	minLat, maxLat := lat-dLat, lat+dLat
	if maxLat >= 90 || minLat <= -90 {
		return MapBounds{MinLat: clampLat(minLat), MaxLat: clampLat(maxLat), MinLng: -180, MaxLng: 180}
	}
	// Longitude spread is widest at the latitude closest to a pole.
	widest := math.Max(math.Abs(minLat), math.Abs(maxLat))
	_, east := DestinationPoint(widest, lng, 90, radius)
	spread := east - lng
	return MapBounds{
		MinLat: minLat,
		MaxLat: maxLat,
		MinLng: clampLng(lng - spread),
		MaxLng: clampLng(lng + spread),
	}
}
