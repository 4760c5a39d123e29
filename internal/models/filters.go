package models

// MapFilter represents the query parameters of a map viewport request.
// Bounds and zoom are pointers so a missing parameter can be told apart from 0.
type MapFilter struct {
	MinLat *float64 `form:"minLat" json:"minLat"`
	MaxLat *float64 `form:"maxLat" json:"maxLat"`
	MinLng *float64 `form:"minLng" json:"minLng"`
	MaxLng *float64 `form:"maxLng" json:"maxLng"`
	Zoom   *float64 `form:"zoom" json:"zoom"`
	Month  int      `form:"month" json:"month"`   // 1-12, defaults to the current month
	Mode   string   `form:"mode" json:"mode"`     // weather, cost, recommended
	Locale string   `form:"locale" json:"locale"` // en, pt
}

// NearbyFilter represents the query parameters of a radius POI search
type NearbyFilter struct {
	Lat      float64 `form:"lat"`
	Lng      float64 `form:"lng"`
	RadiusKm float64 `form:"radiusKm"`
	Limit    int     `form:"limit"`
	Locale   string  `form:"locale"`
}

// LocateFilter represents a point lookup
type LocateFilter struct {
	Lat    float64 `form:"lat"`
	Lng    float64 `form:"lng"`
	Locale string  `form:"locale"`
}

// TripFilter represents filter parameters for listing a user's trips
type TripFilter struct {
	RegionID string `form:"regionId"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// TripsResponse represents a paginated response of trips
type TripsResponse struct {
	Data       []Trip `json:"data"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
}
