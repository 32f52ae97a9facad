// Package metrics exposes Prometheus instrumentation for the event
// pipeline. Metrics register themselves on the default registry, which
// is served at /metrics.
package metrics

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsAccepted counts events written to the log.
	EventsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trackline",
		Subsystem: "ingest",
		Name:      "events_accepted_total",
		Help:      "Total number of events accepted and stored.",
	})

	// EventsRejected counts ingestion requests refused before storage,
	// by reason.
	EventsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trackline",
		Subsystem: "ingest",
		Name:      "events_rejected_total",
		Help:      "Total number of ingestion requests rejected by reason.",
	}, []string{"reason"}) // reason: bot, invalid, storage

	// StatsRequests counts stats queries by range selector.
	StatsRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trackline",
		Subsystem: "stats",
		Name:      "requests_total",
		Help:      "Total number of stats requests by range selector.",
	}, []string{"range"})

	// StatsDuration observes end-to-end stats computation time.
	StatsDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trackline",
		Subsystem: "stats",
		Name:      "duration_seconds",
		Help:      "Time spent fetching and aggregating stats responses.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Handler returns a fiber handler serving the Prometheus scrape
// endpoint.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(
		prometheus.DefaultGatherer,
		promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError},
	))
}
