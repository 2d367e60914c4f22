// Package metrics defines and registers all custom Prometheus metrics for the
// FinManager API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed through the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "finmanager"

// ── Agent metrics ─────────────────────────────────────────────────────────────

// AgentRunsTotal counts agent sessions by terminal state.
// Label:
//   - outcome: "answered", "exhausted", "reasoning_error"
var AgentRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "agent_runs_total",
		Help:      "Total number of agent sessions, by outcome.",
	},
	[]string{"outcome"},
)

// AgentIterations observes how many reasoning steps a session took.
var AgentIterations = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "agent_iterations",
		Help:      "Number of reasoning steps per agent session.",
		Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10, 15, 20},
	},
)

// AgentToolCallsTotal counts tool invocations.
// Labels:
//   - tool: registered tool name, or "unknown"
//   - result: "ok", "error", "panic", "unknown_tool"
var AgentToolCallsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "agent_tool_calls_total",
		Help:      "Total number of agent tool invocations.",
	},
	[]string{"tool", "result"},
)

// SQLSynthesisTotal counts query synthesis attempts.
// Label:
//   - result: "ok", "no_query", "rejected", "model_error"
var SQLSynthesisTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sql_synthesis_total",
		Help:      "Total number of natural-language to SQL synthesis attempts.",
	},
	[]string{"result"},
)

// ── LLM metrics ───────────────────────────────────────────────────────────────

// LLMRequestDuration measures language-model completion latency.
// Labels:
//   - provider: "openai" or "gemini"
//   - status: "ok" or "error"
var LLMRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "llm_request_duration_seconds",
		Help:      "Duration of language-model completion calls.",
		Buckets:   []float64{.1, .25, .5, 1, 2, 4, 8, 16, 32},
	},
	[]string{"provider", "status"},
)

// ── Ledger metrics ────────────────────────────────────────────────────────────

// TransactionsCreatedTotal counts persisted transactions.
// Labels:
//   - type: "Income" or "Expense"
//   - source: "api" or "agent"
var TransactionsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_created_total",
		Help:      "Total number of transactions created, by type and source.",
	},
	[]string{"type", "source"},
)

// UsersRegisteredTotal counts successful registrations.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of registered users.",
	},
)

// SchemaCacheTotal counts schema description cache lookups.
// Label:
//   - result: "hit" or "miss"
var SchemaCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schema_cache_total",
		Help:      "Schema description cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)
