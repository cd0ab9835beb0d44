package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analysis service.
type Metrics struct {
	AnalysisRuns        prometheus.Counter
	AnalysisRunDuration prometheus.Histogram
	AnalysisRunning     prometheus.Gauge
	ResultsPublished    prometheus.Counter

	// Engine output metrics.
	AlertsEmitted        prometheus.Counter
	IntersectionsEmitted *prometheus.CounterVec // labels: kind={past,future}

	// Upstream ingestion metrics.
	FetchErrors     *prometheus.CounterVec // labels: source={balloons,storms}
	TrailsFetched   prometheus.Gauge
	StormsFetched   prometheus.Gauge
	KMZCacheLookups *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		AnalysisRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "balloon_proximity",
			Name:      "analysis_runs_total",
			Help:      "Total completed analysis runs.",
		}),
		AnalysisRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "balloon_proximity",
			Name:      "analysis_run_duration_seconds",
			Help:      "Duration of a complete fetch-analyze-publish cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		AnalysisRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "balloon_proximity",
			Name:      "analysis_running",
			Help:      "1 when the analysis loop is active, 0 when shut down.",
		}),
		ResultsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "balloon_proximity",
			Name:      "results_published_total",
			Help:      "Total analysis results published to the sink topic.",
		}),
		AlertsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "balloon_proximity",
			Name:      "alerts_emitted_total",
			Help:      "Total proximity alerts emitted across all runs.",
		}),
		IntersectionsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "balloon_proximity",
			Name:      "intersections_emitted_total",
			Help:      "Total intersections emitted across all runs, by kind.",
		}, []string{"kind"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "balloon_proximity",
			Name:      "fetch_errors_total",
			Help:      "Upstream fetch failures by source.",
		}, []string{"source"}),
		TrailsFetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "balloon_proximity",
			Name:      "trails_fetched",
			Help:      "Balloon trails in the most recent snapshot.",
		}),
		StormsFetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "balloon_proximity",
			Name:      "storms_fetched",
			Help:      "Active storms in the most recent snapshot.",
		}),
		KMZCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "balloon_proximity",
			Name:      "kmz_cache_total",
			Help:      "Forecast KMZ cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.AnalysisRuns,
		m.AnalysisRunDuration,
		m.AnalysisRunning,
		m.ResultsPublished,
		m.AlertsEmitted,
		m.IntersectionsEmitted,
		m.FetchErrors,
		m.TrailsFetched,
		m.StormsFetched,
		m.KMZCacheLookups,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		AnalysisRuns:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "balloon_proximity", Name: "analysis_runs_total"}),
		AnalysisRunDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "balloon_proximity", Name: "analysis_run_duration_seconds"}),
		AnalysisRunning:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "balloon_proximity", Name: "analysis_running"}),
		ResultsPublished:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "balloon_proximity", Name: "results_published_total"}),
		AlertsEmitted:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "balloon_proximity", Name: "alerts_emitted_total"}),
		IntersectionsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "balloon_proximity", Name: "intersections_emitted_total"}, []string{"kind"}),
		FetchErrors:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "balloon_proximity", Name: "fetch_errors_total"}, []string{"source"}),
		TrailsFetched:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "balloon_proximity", Name: "trails_fetched"}),
		StormsFetched:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "balloon_proximity", Name: "storms_fetched"}),
		KMZCacheLookups:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "balloon_proximity", Name: "kmz_cache_total"}, []string{"result"}),
	}
}
