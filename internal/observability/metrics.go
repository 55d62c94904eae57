package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "air_station_etl"

// Drop reasons for StationRowsDropped.
const (
	ReasonInvalidCity   = "invalid_city"
	ReasonEmptyDistrict = "empty_district"
	ReasonDuplicate     = "duplicate"
)

// Metrics holds the Prometheus counters, histograms, and gauges for one ETL run.
type Metrics struct {
	StationsParsed     prometheus.Counter
	StationsCleaned    prometheus.Counter
	StationRowsDropped *prometheus.CounterVec // labels: reason={invalid_city,empty_district,duplicate}
	AirRecordsParsed   prometheus.Counter
	RegionUnrecognized prometheus.Counter
	RegionCache        *prometheus.CounterVec // labels: result={hit,miss}
	JoinRows           prometheus.Gauge
	RunDuration        prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	m.gatherer = prometheus.DefaultGatherer
	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	m.gatherer = reg
	return m
}

func newMetrics() *Metrics {
	return &Metrics{
		StationsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stations_parsed_total",
			Help:      "Station records read from the inspection-station feed.",
		}),
		StationsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stations_cleaned_total",
			Help:      "Station records kept after cleaning.",
		}),
		StationRowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "station_rows_dropped_total",
			Help:      "Station records removed by cleaning, by reason.",
		}, []string{"reason"}),
		AirRecordsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "air_records_parsed_total",
			Help:      "Monitoring-site records read from the air-quality feed.",
		}),
		RegionUnrecognized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "region_unrecognized_total",
			Help:      "Station addresses that did not start with a known city.",
		}),
		RegionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "region_cache_total",
			Help:      "Address classification cache lookups by result.",
		}, []string{"result"}),
		JoinRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "join_rows",
			Help:      "Cities present in both the station counts and the air-quality means.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-clean-aggregate-load run.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.StationsParsed,
		m.StationsCleaned,
		m.StationRowsDropped,
		m.AirRecordsParsed,
		m.RegionUnrecognized,
		m.RegionCache,
		m.JoinRows,
		m.RunDuration,
	}
}

// ObserveCacheLookup records one region cache lookup. Its signature matches
// the hook taken by region.NewCachedClassifier.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.RegionCache.WithLabelValues(result).Inc()
}

// WriteTextfile writes every registered metric to path in the text
// exposition format, for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
