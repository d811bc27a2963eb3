// Package metrics provides Prometheus instrumentation for ethlift runs.
//
// A run is a short-lived process, so metrics are not scraped. They are
// gathered into a private registry and written once, in the text exposition
// format, for the node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	enabled  bool
	registry *prometheus.Registry

	// Explorer transport metrics
	explorerRequestsTotal *prometheus.CounterVec
	explorerDuration      *prometheus.HistogramVec

	// Pipeline metrics
	remappingsResolved *prometheus.GaugeVec
	filesFlattened     prometheus.Gauge
	diffHunks          prometheus.Gauge
	diffLines          *prometheus.GaugeVec
	driftDetected      prometheus.Gauge
	runsTotal          *prometheus.CounterVec
	lastRunTimestamp   prometheus.Gauge
)

// Init initializes the metrics system. Calling it again discards everything
// recorded so far.
func Init(enabledFlag bool) {
	enabled = enabledFlag
	registry = nil

	if !enabled {
		return
	}

	registry = prometheus.NewRegistry()
	factory := promauto.With(registry)

	explorerRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethlift_explorer_requests_total",
			Help: "Total number of block explorer API requests",
		},
		[]string{"code"},
	)

	explorerDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ethlift_explorer_request_duration_seconds",
			Help:    "Block explorer API latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"code"},
	)

	remappingsResolved = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ethlift_remappings_resolved",
			Help: "Number of remappings resolved from the project config",
		},
		[]string{"builder"},
	)

	filesFlattened = factory.NewGauge(prometheus.GaugeOpts{
		Name: "ethlift_flattened_files",
		Help: "Number of source files inlined into the flattened unit",
	})

	diffHunks = factory.NewGauge(prometheus.GaugeOpts{
		Name: "ethlift_diff_hunks",
		Help: "Number of hunks in the local versus verified diff",
	})

	diffLines = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ethlift_diff_lines",
			Help: "Number of changed lines in the local versus verified diff",
		},
		[]string{"change"},
	)

	driftDetected = factory.NewGauge(prometheus.GaugeOpts{
		Name: "ethlift_drift_detected",
		Help: "1 if local source differs from the verified source, else 0",
	})

	runsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethlift_runs_total",
			Help: "Total number of diff runs by outcome",
		},
		[]string{"result"},
	)

	lastRunTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Name: "ethlift_last_run_timestamp_seconds",
		Help: "Unix time the last diff run finished",
	})
}

// WriteTextfile writes all recorded metrics to path. The file is replaced
// atomically so a collector never reads a partial run.
func WriteTextfile(path string) error {
	if !enabled {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
