package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pointkeep"

// PrometheusRecorder exports metric events as Prometheus counters.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	cacheRequests   *prometheus.CounterVec
	usersRegistered prometheus.Counter
	duplicateEmails prometheus.Counter
	committed       *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	rateLimited     prometheus.Counter
}

// NewPrometheus creates a recorder backed by its own registry, with Go
// runtime and process collectors attached.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p := &PrometheusRecorder{
		registry: reg,
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_cache_requests_total",
			Help:      "User cache lookups by result",
		}, []string{"result"}),
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_registered_total",
			Help:      "Successfully registered users",
		}),
		duplicateEmails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_duplicate_email_total",
			Help:      "Registrations rejected because the email was taken",
		}),
		committed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_committed_total",
			Help:      "Committed ledger transactions by type",
		}, []string{"type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_rejected_total",
			Help:      "Rejected ledger transactions by reason",
		}, []string{"reason"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}

	reg.MustRegister(
		p.cacheRequests,
		p.usersRegistered,
		p.duplicateEmails,
		p.committed,
		p.rejected,
		p.rateLimited,
	)

	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// IncCacheHit increments cache hit counter.
func (p *PrometheusRecorder) IncCacheHit() {
	p.cacheRequests.WithLabelValues("hit").Inc()
}

// IncCacheMiss increments cache miss counter.
func (p *PrometheusRecorder) IncCacheMiss() {
	p.cacheRequests.WithLabelValues("miss").Inc()
}

// IncUserRegistered increments registered users counter.
func (p *PrometheusRecorder) IncUserRegistered() {
	p.usersRegistered.Inc()
}

// IncDuplicateEmail increments rejected registrations counter.
func (p *PrometheusRecorder) IncDuplicateEmail() {
	p.duplicateEmails.Inc()
}

// IncTransactionCommitted increments the committed counter for txType.
func (p *PrometheusRecorder) IncTransactionCommitted(txType string) {
	p.committed.WithLabelValues(txType).Inc()
}

// IncTransactionRejected increments the rejected counter for reason.
func (p *PrometheusRecorder) IncTransactionRejected(reason string) {
	p.rejected.WithLabelValues(reason).Inc()
}

// IncRateLimited increments rate limited requests counter.
func (p *PrometheusRecorder) IncRateLimited() {
	p.rateLimited.Inc()
}
