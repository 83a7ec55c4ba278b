package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Settlement-core counters, histograms and gauges.

var (
	// Proposals
	ProposalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "exchange",
		Name:      "proposals_total",
		Help:      "Total exchange proposals by compliance verdict",
	}, []string{"verdict", "rule"})

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "exchange",
		Name:      "transitions_total",
		Help:      "Total exchange record transitions",
	}, []string{"from", "to"})

	TransitionConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "exchange",
		Name:      "transition_conflicts_total",
		Help:      "Conditional updates that affected zero rows (benign race losses)",
	}, []string{"from", "to"})

	// Verifier
	VerifyOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "verify",
		Name:      "outcomes_total",
		Help:      "Verification attempts by outcome",
	}, []string{"flavor", "outcome"})

	VerifyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "settler",
		Subsystem: "verify",
		Name:      "duration_seconds",
		Help:      "Verification attempt duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"flavor"})

	// Executor
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "settle",
		Name:      "settlements_total",
		Help:      "Settlement executions by result",
	}, []string{"kind", "result"})

	SettlementLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "settler",
		Subsystem: "settle",
		Name:      "duration_seconds",
		Help:      "Settlement execution duration including the external transfer",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"kind"})

	FeeSubsteps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "settle",
		Name:      "fee_substeps_total",
		Help:      "Gift transfers that required a fee payment sub-step",
	})

	// Wagers
	WagersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "wager",
		Name:      "wagers_total",
		Help:      "Wager attempts by result",
	}, []string{"result"})

	WagerGuardRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "wager",
		Name:      "guard_rejections_total",
		Help:      "Wagers rejected by a guard before any ledger work",
	}, []string{"guard"})

	JackpotBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "settler",
		Subsystem: "wager",
		Name:      "jackpot_balance_nanoton",
		Help:      "Current jackpot balance",
	})

	JackpotAwards = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "wager",
		Name:      "jackpot_awards_total",
		Help:      "Jackpot award attempts by result",
	}, []string{"result"})

	// External collaborators
	ExternalCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "gateway",
		Name:      "calls_total",
		Help:      "External API calls by collaborator, method and status",
	}, []string{"collaborator", "method", "status"})

	ExternalCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "settler",
		Subsystem: "gateway",
		Name:      "call_duration_seconds",
		Help:      "External API call duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"collaborator", "method"})

	RateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "gateway",
		Name:      "rate_limit_waits_total",
		Help:      "Outbound calls that had to wait for a rate limit token",
	}, []string{"collaborator"})

	// Journal
	JournalAppends = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "journal",
		Name:      "appends_total",
		Help:      "Journal entries appended",
	}, []string{"kind"})

	JournalFanoutErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "journal",
		Name:      "fanout_errors_total",
		Help:      "Best-effort stream fan-out failures (Postgres append still succeeded)",
	})

	// Alerting
	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "alert",
		Name:      "sent_total",
		Help:      "Alerts sent by channel and type",
	}, []string{"channel", "type"})

	AlertsCooldownSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settler",
		Subsystem: "alert",
		Name:      "cooldown_skipped_total",
		Help:      "Alerts suppressed by the per-key cooldown",
	}, []string{"channel", "type"})
)
