// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Rejection reasons reported with IncTransactionRejected.
const (
	ReasonInsufficientBalance = "insufficient_balance"
	ReasonUserNotFound        = "user_not_found"
	ReasonInvalid             = "validation_failed"
	ReasonBalanceOverflow     = "balance_overflow"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, tests, etc.
type Recorder interface {
	// User cache metrics
	IncCacheHit()
	IncCacheMiss()

	// Ledger metrics
	IncUserRegistered()
	IncDuplicateEmail()
	IncTransactionCommitted(txType string)
	IncTransactionRejected(reason string)

	// Admission metrics
	IncRateLimited()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
