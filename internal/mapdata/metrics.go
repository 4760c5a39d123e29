package mapdata

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache and result labels.
const (
	cacheReference = "reference"
	cachePOI       = "poi"

	resultHit    = "hit"
	resultMiss   = "miss"
	resultShared = "shared"

	outcomeOK    = "ok"
	outcomeError = "error"
)

// Metrics are the Prometheus collectors of the map data cache.
type Metrics struct {
	Lookups    *prometheus.CounterVec
	Fetches    *prometheus.CounterVec
	POIEntries prometheus.Gauge
}

// NewMetrics registers the cache collectors against reg, defaulting to the
// global registry when nil. Collectors already registered are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mapdata_cache_lookups_total",
		Help: "Map data cache lookups, labeled by cache and result (hit, miss, shared).",
	}, []string{"cache", "result"})
	if err := reg.Register(lookups); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		lookups = are.ExistingCollector.(*prometheus.CounterVec)
	}

	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mapdata_backend_fetches_total",
		Help: "Backend fetches issued by the map data cache, labeled by source and outcome.",
	}, []string{"source", "outcome"})
	if err := reg.Register(fetches); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		fetches = are.ExistingCollector.(*prometheus.CounterVec)
	}

	entries := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mapdata_poi_cache_entries",
		Help: "Quantized viewports currently held in the POI cache.",
	})
	if err := reg.Register(entries); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		entries = are.ExistingCollector.(prometheus.Gauge)
	}

	return &Metrics{Lookups: lookups, Fetches: fetches, POIEntries: entries}, nil
}

func (m *Metrics) lookup(cache, result string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) fetch(source string, err error) {
	if m == nil {
		return
	}
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	m.Fetches.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) poiEntries(n int) {
	if m == nil {
		return
	}
	m.POIEntries.Set(float64(n))
}
