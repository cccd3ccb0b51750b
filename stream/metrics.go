package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// recordsPublished counts feed records by event name
	recordsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canopy_stream_records_published_total",
		Help: "Total stream records published by event name",
	}, []string{"event_name"})

	// publishErrors counts events the feed handler rejected
	publishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canopy_stream_publish_errors_total",
		Help: "Total stream events rejected by the feed handler",
	})

	// recordsApplied counts records applied by Handler by event name
	recordsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canopy_stream_records_applied_total",
		Help: "Total stream records applied to a store by event name",
	}, []string{"event_name"})
)
