package observability

// Metric name prefixes
const (
	MetricPrefix = "arena_ledger"
)

// Metric names
const (
	// Settlement metrics
	SettlementsTotal   = MetricPrefix + ".settlements.total"
	SettlementDuration = MetricPrefix + ".settlements.duration"

	// Ledger metrics
	LedgerEntriesTotal = MetricPrefix + ".ledger.entries_total"
	LedgerReplaysTotal = MetricPrefix + ".ledger.replays_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Worker metrics
	WorkerSweepsTotal = MetricPrefix + ".worker.sweeps_total"
)

// Label keys
const (
	LabelKind      = "kind"
	LabelOutcome   = "outcome"
	LabelType      = "type"
	LabelCurrency  = "currency"
	LabelEventType = "event_type"
	LabelAction    = "action"
)

// Settlement kinds
const (
	KindLedger     = "ledger"
	KindMatch      = "match"
	KindTournament = "tournament"
	KindReferral   = "referral"
	KindDeposit    = "deposit"
	KindReconcile  = "reconcile"
)

// Settlement outcomes
const (
	OutcomeSuccess = "success"
	OutcomeReplay  = "replay"
	OutcomeError   = "error"
)
