package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// writesTotal counts committed writes by operation
	writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canopy_writes_total",
		Help: "Total committed writes by operation",
	}, []string{"operation"})

	// writeErrors counts rejected writes by operation
	writeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canopy_write_errors_total",
		Help: "Total rejected writes by operation",
	}, []string{"operation"})

	// commitChanges tracks the number of changed locations per commit
	commitChanges = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "canopy_commit_changes",
		Help:    "Number of changed locations per commit",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 to ~16k
	})

	// eventsDispatched counts listener invocations by event type
	eventsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canopy_events_dispatched_total",
		Help: "Total listener invocations by event type",
	}, []string{"event_type"})

	// listenersActive tracks registered listeners by event type
	listenersActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "canopy_listeners",
		Help: "Registered listeners by event type",
	}, []string{"event_type"})
)
