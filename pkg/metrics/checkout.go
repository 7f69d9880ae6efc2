package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records payment outcomes and catalog load behaviour.
type CheckoutMetrics struct {
	payOutcomes   *prometheus.CounterVec
	payDuration   *prometheus.HistogramVec
	loadDiscarded prometheus.Counter
	sessions      prometheus.Gauge
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	payOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_pay_outcomes_total",
		Help: "Terminal payment attempts by status and failure reason.",
	}, []string{"status", "reason"})
	payDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_pay_duration_seconds",
		Help:    "Duration of payment attempts from order creation to outcome.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
	loadDiscarded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_load_discarded_total",
		Help: "Checkout loads whose results were dropped because a newer load started.",
	})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "checkout_sessions_active",
		Help: "Checkout sessions currently held in memory.",
	})
	reg.MustRegister(payOutcomes, payDuration, loadDiscarded, sessions)
	return &CheckoutMetrics{
		payOutcomes:   payOutcomes,
		payDuration:   payDuration,
		loadDiscarded: loadDiscarded,
		sessions:      sessions,
	}
}

// ObservePay records a terminal payment outcome. reason is empty on success.
func (m *CheckoutMetrics) ObservePay(status, reason string, duration time.Duration) {
	if m == nil || m.payOutcomes == nil {
		return
	}
	status = normalizeLabel(status)
	if reason == "" {
		reason = "none"
	}
	m.payOutcomes.WithLabelValues(status, reason).Inc()
	m.payDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// IncLoadDiscarded counts a superseded checkout load.
func (m *CheckoutMetrics) IncLoadDiscarded() {
	if m == nil || m.loadDiscarded == nil {
		return
	}
	m.loadDiscarded.Inc()
}

// SessionOpened bumps the active session gauge.
func (m *CheckoutMetrics) SessionOpened() {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.Inc()
}

// SessionClosed lowers the active session gauge.
func (m *CheckoutMetrics) SessionClosed() {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.Dec()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
