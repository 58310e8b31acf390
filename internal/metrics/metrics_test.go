package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistered(t *testing.T) {
	FetchTotal.WithLabelValues("ok").Inc()
	ParseIssues.WithLabelValues("amount").Inc()
	RenderDuration.WithLabelValues("weekly", "svg").Observe(0.01)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}

	for _, want := range []string{
		"pumplog_feed_fetch_total",
		"pumplog_sample_fallback_total",
		"pumplog_parse_issues_total",
		"pumplog_pipeline_duration_seconds",
		"pumplog_render_duration_seconds",
		"pumplog_events",
		"pumplog_last_refresh_timestamp_seconds",
	} {
		assert.True(t, names[want], "%s not registered", want)
	}
}
