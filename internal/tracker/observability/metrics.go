package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tracker_api_request_seconds",
		Help:    "Time spent serving an API request.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tracker_upstream_request_seconds",
		Help:    "Time spent on upstream data API requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_upstream_requests_total",
		Help: "Total number of upstream data API requests by outcome.",
	}, []string{"endpoint", "outcome"})

	MatchesIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_matches_ingested_total",
		Help: "Total number of matches persisted by ingestion jobs.",
	})

	PerformancesIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_performances_ingested_total",
		Help: "Total number of player performances persisted by ingestion jobs.",
	})

	EventsIngestedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_events_ingested_total",
		Help: "Total number of timeline events persisted by kind.",
	}, []string{"kind"})

	UnknownEventIDsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_unknown_event_ids_total",
		Help: "Total number of timeline events skipped because the id is not in the reference tables.",
	}, []string{"kind"})

	IngestFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_ingest_failures_total",
		Help: "Total number of per-target ingestion failures by job.",
	}, []string{"job"})

	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_sync_runs_total",
		Help: "Total number of background sync cycles by outcome.",
	}, []string{"outcome"})

	SyncDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracker_sync_seconds",
		Help:    "Duration of one background sync cycle.",
		Buckets: prometheus.DefBuckets,
	})
)
