package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelgrid_sync_runs_total",
		Help: "Catalog sync invocations by type and outcome.",
	}, []string{"type", "outcome"})

	syncVideosUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reelgrid_sync_videos_upserted_total",
		Help: "Videos upserted during catalog syncs.",
	})

	syncVideosDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reelgrid_sync_videos_deleted_total",
		Help: "Videos deleted by full-sync reconciliation.",
	})

	syncVideosFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reelgrid_sync_videos_failed_total",
		Help: "Per-video upsert failures skipped during syncs.",
	})

	syncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reelgrid_sync_duration_seconds",
		Help:    "Catalog sync duration by type.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"type"})
)
