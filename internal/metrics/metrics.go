// Package metrics exposes Prometheus counters for account linking and the locker viewer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
	ResultDenied   = "denied"
	ResultRetired  = "retired"
	ResultEmpty    = "empty"
)

// Metrics tracks the link flow and locker sessions.
// All methods are safe on a nil receiver.
type Metrics struct {
	LinksIssued     prometheus.Counter
	Redemptions     *prometheus.CounterVec
	SessionsOpened  prometheus.Counter
	SessionsRetired prometheus.Counter
	Navigation      *prometheus.CounterVec
	CatalogFetches  *prometheus.CounterVec
	CatalogDuration prometheus.Histogram
	PendingExpired  prometheus.Counter
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics on reg. Tests pass a fresh prometheus.NewRegistry().
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LinksIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "lockerlink_authorization_urls_issued_total",
			Help: "Total number of authorization URLs issued",
		}),
		Redemptions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lockerlink_redemptions_total",
			Help: "Authorization code redemptions by result",
		}, []string{"result"}),
		SessionsOpened: f.NewCounter(prometheus.CounterOpts{
			Name: "lockerlink_locker_sessions_opened_total",
			Help: "Total number of locker sessions created",
		}),
		SessionsRetired: f.NewCounter(prometheus.CounterOpts{
			Name: "lockerlink_locker_sessions_retired_total",
			Help: "Total number of locker sessions retired",
		}),
		Navigation: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lockerlink_locker_navigation_total",
			Help: "Locker navigation events by result",
		}, []string{"result"}),
		CatalogFetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lockerlink_catalog_fetches_total",
			Help: "Catalog fetches by result",
		}, []string{"result"}),
		CatalogDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lockerlink_catalog_fetch_duration_seconds",
			Help:    "Duration of catalog fetches",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		PendingExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "lockerlink_pending_authorizations_expired_total",
			Help: "Pending authorizations removed by the expiry sweep",
		}),
	}
}

// IncrementLinksIssued records an issued authorization URL.
func (m *Metrics) IncrementLinksIssued() {
	if m == nil {
		return
	}
	m.LinksIssued.Inc()
}

// IncrementRedemption records a redemption attempt.
func (m *Metrics) IncrementRedemption(result string) {
	if m == nil {
		return
	}
	m.Redemptions.WithLabelValues(result).Inc()
}

// IncrementSessionsOpened records a new locker session.
func (m *Metrics) IncrementSessionsOpened() {
	if m == nil {
		return
	}
	m.SessionsOpened.Inc()
}

// IncrementSessionsRetired records a retired locker session.
func (m *Metrics) IncrementSessionsRetired() {
	if m == nil {
		return
	}
	m.SessionsRetired.Inc()
}

// IncrementNavigation records a navigation event.
func (m *Metrics) IncrementNavigation(result string) {
	if m == nil {
		return
	}
	m.Navigation.WithLabelValues(result).Inc()
}

// ObserveCatalogFetch records a catalog fetch and its duration.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCatalogFetch(result string, start time.Time) {
	if m == nil {
		return
	}
	m.CatalogFetches.WithLabelValues(result).Inc()
	m.CatalogDuration.Observe(time.Since(start).Seconds())
}

// AddExpiredPending records pending authorizations dropped by the sweep.
func (m *Metrics) AddExpiredPending(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PendingExpired.Add(float64(n))
}
