// Package services – Prometheus metrics
//
// Domain-level counters for webhook intake and PMS posting outcomes. HTTP
// transport metrics live in the middleware layer; these track what the
// business logic actually did with each event.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Gateway webhook events received, by event name and outcome.",
		},
		[]string{"event", "outcome"},
	)

	postingAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pms_posting_attempts_total",
			Help: "PMS posting attempts during reconciliation, by strategy and status.",
		},
		[]string{"strategy", "status"},
	)
)

func init() {
	prometheus.MustRegister(webhookEventsTotal, postingAttemptsTotal)
}
