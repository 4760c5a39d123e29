package scoring

import "math"

// Weights of the recommended-score derivation.
const (
	WeatherWeight = 0.6
	CostWeight    = 0.4
)

// RecommendedScore derives the recommended score from weather and cost,
// rounded to one decimal.
func RecommendedScore(weather, cost float64) float64 {
	return math.Round((weather*WeatherWeight+cost*CostWeight)*10) / 10
}
