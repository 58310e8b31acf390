// Package metrics holds the Prometheus collectors for the dashboard
// pipeline and chart rendering. They register on the default registry and
// are served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pumplog"

var (
	FetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_fetch_total",
		Help:      "Feed fetch attempts by result (ok, error)",
	}, []string{"result"})

	FallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sample_fallback_total",
		Help:      "Pipeline runs that used generated sample data",
	})

	ParseIssues = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parse_issues_total",
		Help:      "Feed rows with an unparseable field",
	}, []string{"field"})

	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_duration_seconds",
		Help:      "Time spent fetching, parsing and aggregating",
		Buckets:   prometheus.DefBuckets,
	})

	RenderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "render_duration_seconds",
		Help:      "Time spent painting a chart",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"chart", "format"})

	Events = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events",
		Help:      "Pumping events in the current snapshot",
	})

	LastRefresh = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_refresh_timestamp_seconds",
		Help:      "Unix time of the last snapshot build",
	})
)

func init() {
	prometheus.MustRegister(FetchTotal, FallbackTotal, ParseIssues, PipelineDuration, RenderDuration, Events, LastRefresh)
}
