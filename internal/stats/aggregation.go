package stats

import (
	"sort"
)

// Mean calculates the arithmetic mean of values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median calculates the median of values
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// TopKeys returns up to n keys with the highest values, highest first.
// Ties are broken by the smaller key.
func TopKeys(values map[int]float64, n int) []int {
	keys := sortedKeys(values)
	sort.SliceStable(keys, func(i, j int) bool {
		return values[keys[i]] > values[keys[j]]
	})
	if n < len(keys) {
		keys = keys[:n]
	}
	return keys
}

// MinKey returns the key with the lowest value. Ties are broken by the
// smaller key. ok is false for an empty map.
func MinKey(values map[int]float64) (key int, ok bool) {
	for _, k := range sortedKeys(values) {
		if !ok || values[k] < values[key] {
			key, ok = k, true
		}
	}
	return key, ok
}

func sortedKeys(values map[int]float64) []int {
	keys := make([]int, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
