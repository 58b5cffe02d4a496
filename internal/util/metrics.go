package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pick_sessions_started_total",
		Help: "Total number of pick sessions started",
	})

	SessionsFinishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pick_sessions_finished_total",
		Help: "Total number of pick sessions finished",
	})

	SessionsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pick_sessions_rejected_total",
		Help: "Total number of rejected session starts",
	}, []string{"reason"})

	ItemsDoneTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pick_items_done_total",
		Help: "Total number of pick items confirmed done",
	})

	ShortagesReportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pick_shortages_reported_total",
		Help: "Total number of shortage reports accepted",
	})

	ShortageReportsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pick_shortage_reports_rejected_total",
		Help: "Total number of rejected shortage reports",
	}, []string{"reason"})

	AllocationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "packing_allocation_latency_seconds",
		Help:    "Latency of packing allocation computations",
		Buckets: prometheus.DefBuckets,
	})

	ManifestLinesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "packing_manifest_lines_total",
		Help: "Total number of packing lines produced",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
