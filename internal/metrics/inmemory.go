package metrics

import (
	"sync/atomic"

	"github.com/pointkeep/pointkeep/internal/model"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	CacheHits            uint64
	CacheMisses          uint64
	UsersRegistered      uint64
	DuplicateEmails      uint64
	EarnCommitted        uint64
	SpendCommitted       uint64
	RejectedInsufficient uint64
	RejectedUserNotFound uint64
	RejectedInvalid      uint64
	RejectedOverflow     uint64
	RateLimitedRequests  uint64
}

// InMemoryRecorder stores metrics in memory for tests and the plain-text
// metrics endpoint.
type InMemoryRecorder struct {
	cacheHits            uint64
	cacheMisses          uint64
	usersRegistered      uint64
	duplicateEmails      uint64
	earnCommitted        uint64
	spendCommitted       uint64
	rejectedInsufficient uint64
	rejectedUserNotFound uint64
	rejectedInvalid      uint64
	rejectedOverflow     uint64
	rateLimited          uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		CacheHits:            atomic.LoadUint64(&m.cacheHits),
		CacheMisses:          atomic.LoadUint64(&m.cacheMisses),
		UsersRegistered:      atomic.LoadUint64(&m.usersRegistered),
		DuplicateEmails:      atomic.LoadUint64(&m.duplicateEmails),
		EarnCommitted:        atomic.LoadUint64(&m.earnCommitted),
		SpendCommitted:       atomic.LoadUint64(&m.spendCommitted),
		RejectedInsufficient: atomic.LoadUint64(&m.rejectedInsufficient),
		RejectedUserNotFound: atomic.LoadUint64(&m.rejectedUserNotFound),
		RejectedInvalid:      atomic.LoadUint64(&m.rejectedInvalid),
		RejectedOverflow:     atomic.LoadUint64(&m.rejectedOverflow),
		RateLimitedRequests:  atomic.LoadUint64(&m.rateLimited),
	}
}

// IncCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncCacheHit() {
	atomic.AddUint64(&m.cacheHits, 1)
}

// IncCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncCacheMiss() {
	atomic.AddUint64(&m.cacheMisses, 1)
}

// IncUserRegistered increments registered users counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncDuplicateEmail increments rejected registrations counter.
func (m *InMemoryRecorder) IncDuplicateEmail() {
	atomic.AddUint64(&m.duplicateEmails, 1)
}

// IncTransactionCommitted increments the committed counter for txType.
func (m *InMemoryRecorder) IncTransactionCommitted(txType string) {
	switch model.TransactionType(txType) {
	case model.TransactionEarn:
		atomic.AddUint64(&m.earnCommitted, 1)
	case model.TransactionSpend:
		atomic.AddUint64(&m.spendCommitted, 1)
	}
}

// IncTransactionRejected increments the rejected counter for reason.
func (m *InMemoryRecorder) IncTransactionRejected(reason string) {
	switch reason {
	case ReasonInsufficientBalance:
		atomic.AddUint64(&m.rejectedInsufficient, 1)
	case ReasonUserNotFound:
		atomic.AddUint64(&m.rejectedUserNotFound, 1)
	case ReasonInvalid:
		atomic.AddUint64(&m.rejectedInvalid, 1)
	case ReasonBalanceOverflow:
		atomic.AddUint64(&m.rejectedOverflow, 1)
	}
}

// IncRateLimited increments rate limited requests counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}
