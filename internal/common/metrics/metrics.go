// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScoutCyclesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_cycles_completed_total",
			Help: "Total number of scrape-and-score cycles completed",
		},
		[]string{"status"},
	)

	ScoutCycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "scout_cycle_duration_seconds",
			Help: "Duration of a full scrape-and-score cycle in seconds",
		},
		[]string{"source"},
	)

	LifecycleEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_lifecycle_events_total",
			Help: "Lifecycle events emitted by the reconciler",
		},
		[]string{"event_type"},
	)

	ListingsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_listings_scored_total",
			Help: "Listings scored per cycle, by data completeness",
		},
		[]string{"completeness"},
	)

	EmptyScrapesSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scout_empty_scrapes_suppressed_total",
			Help: "Cycles where an empty scrape suppressed absence transitions",
		},
	)

	MarketLookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_market_lookup_failures_total",
			Help: "Failed price-guide lookups by source",
		},
		[]string{"source"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_notifications_sent_total",
			Help: "Notifications delivered per channel",
		},
		[]string{"channel", "event_type"},
	)

	TrackedListings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scout_tracked_listings",
			Help: "Number of tracked listings per lifecycle state",
		},
		[]string{"state"},
	)
)
