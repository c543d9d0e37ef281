// Package metrics holds the bot's Prometheus collectors. They register with
// the default registry and are served by the observability server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smm_bot"

var (
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "events_total",
			Help:      "Inbound events by kind",
		},
		[]string{"kind"},
	)

	DispatchErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "errors_total",
			Help:      "Events whose handling failed with an infrastructure error",
		},
	)

	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Time spent handling one inbound event",
			Buckets:   prometheus.DefBuckets,
		},
	)

	DepositsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deposits",
			Name:      "submitted_total",
			Help:      "Deposits submitted by currency",
		},
		[]string{"currency"},
	)

	DepositsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deposits",
			Name:      "resolved_total",
			Help:      "Deposits approved or rejected",
		},
		[]string{"status"},
	)

	OrdersPlacedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders confirmed and paid",
		},
	)

	OrderStatusUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "status_updates_total",
			Help:      "Administrator order status changes by new status",
		},
		[]string{"status"},
	)
)
