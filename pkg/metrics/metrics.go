package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Notification related metrics
	NotificationsAttempted *prometheus.CounterVec
	NotificationsFailed    *prometheus.CounterVec
	NotificationLatency    prometheus.Histogram
	DuplicateRequests      prometheus.Counter
	MissedCallsPlaced      prometheus.Counter

	// Restaurant status metrics
	StatusCacheHits      prometheus.Counter
	StatusCacheMisses    prometheus.Counter
	StatusChangesEmitted prometheus.Counter
	Subscribers          prometheus.Gauge

	// Redis metrics
	RedisOperations *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		NotificationsAttempted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_attempted_total",
			Help:      "Total number of notification channel attempts",
		}, []string{"channel"}),
		NotificationsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_failed_total",
			Help:      "Total number of failed notification channel attempts",
		}, []string{"channel"}),
		NotificationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_duration_seconds",
			Help:      "Time spent running the notification fan-out per order",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		DuplicateRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duplicate_requests_total",
			Help:      "Total number of short-circuited duplicate notification requests",
		}),
		MissedCallsPlaced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "missed_calls_placed_total",
			Help:      "Total number of vendor missed calls accepted by the provider",
		}),

		StatusCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "status_cache_hits_total",
			Help:      "Restaurant status reads served from cache",
		}),
		StatusCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "status_cache_misses_total",
			Help:      "Restaurant status reads that forced a re-sample",
		}),
		StatusChangesEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "status_changes_emitted_total",
			Help:      "Total number of restaurant open/closed transitions broadcast",
		}),
		Subscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "status_subscribers",
			Help:      "Current number of connected status subscribers",
		}),

		RedisOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "redis_operations_total",
			Help:      "Total number of Redis operations",
		}, []string{"operation", "status"}),
	}
}
