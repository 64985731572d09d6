package handler

import (
	"fmt"
	"net/http"

	"github.com/pointkeep/pointkeep/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format, using the same
// series names as the Prometheus recorder.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "pointkeep_user_cache_requests_total{result=\"hit\"} %d\n", snap.CacheHits)
	writeMetric(w, "pointkeep_user_cache_requests_total{result=\"miss\"} %d\n", snap.CacheMisses)

	writeMetric(w, "pointkeep_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "pointkeep_registrations_duplicate_email_total %d\n", snap.DuplicateEmails)

	writeMetric(w, "pointkeep_transactions_committed_total{type=\"earn\"} %d\n", snap.EarnCommitted)
	writeMetric(w, "pointkeep_transactions_committed_total{type=\"spend\"} %d\n", snap.SpendCommitted)

	writeMetric(w, "pointkeep_transactions_rejected_total{reason=%q} %d\n", metrics.ReasonInsufficientBalance, snap.RejectedInsufficient)
	writeMetric(w, "pointkeep_transactions_rejected_total{reason=%q} %d\n", metrics.ReasonUserNotFound, snap.RejectedUserNotFound)
	writeMetric(w, "pointkeep_transactions_rejected_total{reason=%q} %d\n", metrics.ReasonInvalid, snap.RejectedInvalid)
	writeMetric(w, "pointkeep_transactions_rejected_total{reason=%q} %d\n", metrics.ReasonBalanceOverflow, snap.RejectedOverflow)

	writeMetric(w, "pointkeep_rate_limited_requests_total %d\n", snap.RateLimitedRequests)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
