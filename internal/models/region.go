package models

// Ring is an ordered sequence of [longitude, latitude] pairs.
type Ring [][2]float64

// Polygon is a list of rings; the first ring is the outer boundary.
type Polygon []Ring

// Region is a named geographic polygon with month-indexed travel metrics.
type Region struct {
	ID          string                 `json:"id"`
	Name        Localized[string]      `json:"name"`
	Country     string                 `json:"country"`
	Description Localized[string]      `json:"description"`
	Geometry    Polygon                `json:"geometry"`
	Months      map[int]*MonthlyMetric `json:"months,omitempty"`
}

// Metric returns the metric for month, or nil when the region has no data
// for it.
func (r *Region) Metric(month int) *MonthlyMetric {
	if r == nil || r.Months == nil {
		return nil
	}
	return r.Months[month]
}

// MonthlyMetric holds the travel scores for one region in one month.
type MonthlyMetric struct {
	WeatherScore     float64             `json:"weatherScore"`
	CostScore        float64             `json:"costScore"` // higher = cheaper
	RecommendedScore float64             `json:"recommendedScore"`
	WeatherDesc      Localized[string]   `json:"weatherDesc"`
	WhyVisit         Localized[string]   `json:"whyVisit"`
	AvgDailyCost     float64             `json:"avgDailyCost"` // USD
	Highlights       Localized[[]string] `json:"highlights"`
}

// MonthlyRow is a region_monthly_data row.
type MonthlyRow struct {
	RegionID string `json:"regionId"`
	Month    int    `json:"month"` // 1-12
	MonthlyMetric
}

// RegionSummary aggregates a region's months.
type RegionSummary struct {
	RegionID        string  `json:"regionId"`
	MonthsWithData  int     `json:"monthsWithData"`
	BestMonths      []int   `json:"bestMonths"`
	CheapestMonth   int     `json:"cheapestMonth,omitempty"`
	MeanWeather     float64 `json:"meanWeather"`
	MeanCost        float64 `json:"meanCost"`
	MeanRecommended float64 `json:"meanRecommended"`
	MedianDailyCost float64 `json:"medianDailyCost"`
}
