package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncCacheHit is a no-op.
func (n *NoopRecorder) IncCacheHit() {}

// IncCacheMiss is a no-op.
func (n *NoopRecorder) IncCacheMiss() {}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncDuplicateEmail is a no-op.
func (n *NoopRecorder) IncDuplicateEmail() {}

// IncTransactionCommitted is a no-op.
func (n *NoopRecorder) IncTransactionCommitted(txType string) {}

// IncTransactionRejected is a no-op.
func (n *NoopRecorder) IncTransactionRejected(reason string) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited() {}
