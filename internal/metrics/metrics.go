// Package metrics defines Prometheus metrics for pricelens.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pricelens"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "Whether the last liveness probe succeeded (1) or failed (0).",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "Whether the last readiness probe succeeded (1) or failed (0).",
	})
)

// Vision metrics.
var (
	VisionCallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vision_calls_total",
		Help:      "Total number of image annotation calls.",
	})

	VisionFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vision_failures_total",
		Help:      "Total number of failed image annotation calls.",
	})

	VisionCallDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "vision_call_duration_seconds",
		Help:      "Duration of image annotation calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	KeywordsExtracted = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "keywords_extracted",
		Help:      "Distribution of keyword counts extracted per image.",
		Buckets:   prometheus.LinearBuckets(0, 2, 11), // 0, 2, 4, ..., 20
	})
)

// Source metrics.
var (
	SourceSearchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "source_search_duration_seconds",
		Help:      "Duration of per-source searches in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})

	SourceFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_failures_total",
		Help:      "Total number of source search failures by kind.",
	}, []string{"source", "kind"})

	SourceOffersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_offers_total",
		Help:      "Total number of offers returned per source.",
	}, []string{"source"})

	SourceDailyUsage = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_daily_usage",
		Help:      "Current daily request count per source within the rolling 24-hour window.",
	}, []string{"source"})

	SourceDailyLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_daily_limit_hits_total",
		Help:      "Total number of times a source's daily request limit was reached.",
	}, []string{"source"})
)

// Aggregation metrics.
var (
	AggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregation_duration_seconds",
		Help:      "Duration of full fan-out aggregation cycles in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	AggregationOffers = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregation_offers",
		Help:      "Distribution of merged offer counts per aggregation.",
		Buckets:   prometheus.LinearBuckets(0, 2, 11),
	})
)

// Wishlist refresh and alert metrics.
var (
	RefreshCyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_cycles_total",
		Help:      "Total number of wishlist refresh cycles.",
	})

	RefreshItemsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_items_total",
		Help:      "Total number of tracked items refreshed.",
	})

	RefreshFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_failures_total",
		Help:      "Total number of per-item refresh failures.",
	})

	AlertsFiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_fired_total",
		Help:      "Total number of target-price alerts fired.",
	})

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures.",
	})
)
