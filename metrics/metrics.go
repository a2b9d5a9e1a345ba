// Package metrics holds the prometheus collectors shared by the fetcher and the dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

var (
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_pipeline_pages_total",
			Help: "Catalog listing pages requested, by outcome",
		},
		[]string{"status"},
	)

	RecordsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_pipeline_records_total",
			Help: "Catalog detail records requested, by outcome",
		},
		[]string{"status"},
	)

	DuplicateIDs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movie_pipeline_duplicate_ids_total",
			Help: "Catalog identifiers seen on more than one listing page",
		},
	)

	ViewRecomputes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movie_dashboard_recomputes_total",
			Help: "Dashboard view recomputations triggered by filter changes",
		},
	)

	ViewLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movie_dashboard_recompute_seconds",
			Help:    "Time spent recomputing the dashboard views",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)
)
