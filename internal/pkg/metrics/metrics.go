// Package metrics defines and registers all custom Prometheus metrics for the
// portal. It is the single source of truth for metric names, labels, and help
// strings. Metrics register with the default registry on package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session & access ─────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "inactive", "failed", "invalid_form"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// SessionInvalidationsTotal counts sessions dropped because the backend
// rejected their credential, or because a stored credential had expired.
var SessionInvalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_invalidations_total",
		Help:      "Total number of forced session invalidations.",
	},
	[]string{"reason"},
)

// GateDecisionsTotal counts authorization gate verdicts.
// Labels:
//   - surface: top-level route path (e.g. "/projects")
//   - action: "render", "redirect", "not_found"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of authorization gate decisions.",
	},
	[]string{"surface", "action"},
)

// ── Backend gateway ──────────────────────────────────────────────────────────

// GatewayRequestDuration measures backend round trips.
// Labels:
//   - method: HTTP method
//   - status: response status code, or "error" when no response arrived
var GatewayRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of backend API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "status"},
)

// ── Projects ─────────────────────────────────────────────────────────────────

// ProjectTransitionsTotal counts project status/progress mutations.
// Labels:
//   - kind: "status", "progress", "reconcile"
//   - result: "committed", "rejected", "failed", "partial"
var ProjectTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "project_transitions_total",
		Help:      "Total number of project status and progress updates, by outcome.",
	},
	[]string{"kind", "result"},
)

// ── Notifications ────────────────────────────────────────────────────────────

// PollCyclesTotal counts notification poll cycles.
// Label:
//   - result: "ok", "error", "skipped", "discarded"
var PollCyclesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_cycles_total",
		Help:      "Total number of service request poll cycles, by outcome.",
	},
	[]string{"result"},
)

// NotificationsEmittedTotal counts notifications raised by the poller.
var NotificationsEmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_emitted_total",
		Help:      "Total number of service request notifications emitted, by kind.",
	},
	[]string{"kind"},
)

// ActivePollers tracks running notification pollers.
var ActivePollers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_pollers",
		Help:      "Current number of running service request pollers.",
	},
)
