// Package metrics defines the custom Prometheus metrics of the activity board.
// It is the single source of truth for metric names, labels, and help strings.
//
// All metrics register with the default Prometheus registry on package load
// and are served by the /metrics route alongside the echoprometheus HTTP
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "activity_board"

// ── Upstream API ──────────────────────────────────────────────────────────────

// UpstreamRequestsTotal counts calls to the activities API.
// Labels:
//   - endpoint: "activities", "signup", "unregister", "login", "logout", "me"
//   - outcome: "ok", "api_error", "transport_error", "malformed"
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of activities API calls, by endpoint and outcome.",
	},
	[]string{"endpoint", "outcome"},
)

// UpstreamRequestDuration measures activities API round trips.
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of activities API calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// ── Controller ────────────────────────────────────────────────────────────────

// CommandsTotal counts dispatched user commands.
// Labels:
//   - command: "login", "logout", "signup", "unregister"
//   - result: "success" or "failure"
var CommandsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Total number of dispatched board commands, by command and result.",
	},
	[]string{"command", "result"},
)

// AuthGateTransitionsTotal counts Auth Gate state changes.
var AuthGateTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_gate_transitions_total",
		Help:      "Total number of Auth Gate transitions, by source and target state.",
	},
	[]string{"from", "to"},
)

// BoardRefreshesTotal counts board renders.
// Label:
//   - result: "ok" or "failed"
var BoardRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "board_refreshes_total",
		Help:      "Total number of board refreshes, by result.",
	},
	[]string{"result"},
)

// MessagesShownTotal counts transient messages, by surface and kind.
var MessagesShownTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_shown_total",
		Help:      "Total number of transient messages shown, by surface and kind.",
	},
	[]string{"surface", "kind"},
)

// ── Audit trail ───────────────────────────────────────────────────────────────

// AuditQueueDepth tracks records waiting in each audit worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit records pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// AuditErrorsTotal counts audit records that were not persisted.
// Label:
//   - reason: "queue_full" or "insert_failed"
var AuditErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_errors_total",
		Help:      "Total number of audit records dropped or failed, by reason.",
	},
	[]string{"reason"},
)
