package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the lead intake flow.
type LeadMetrics struct {
	submissionsTotal   *prometheus.CounterVec
	attemptsTotal      *prometheus.CounterVec
	attemptLatency     *prometheus.HistogramVec
	validationFailures *prometheus.CounterVec
	queueDepth         prometheus.Gauge
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contractor",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Lead submissions by service and final outcome",
		}, []string{"service", "outcome"}),
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contractor",
			Subsystem: "leads",
			Name:      "delivery_attempts_total",
			Help:      "Delivery attempts per strategy",
		}, []string{"strategy", "status"}),
		attemptLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "contractor",
			Subsystem: "leads",
			Name:      "delivery_latency_seconds",
			Help:      "Latency of a single delivery attempt",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contractor",
			Subsystem: "leads",
			Name:      "validation_failures_total",
			Help:      "Form steps rejected by validation",
		}, []string{"service", "step"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "contractor",
			Subsystem: "leads",
			Name:      "queue_depth",
			Help:      "Leads waiting in the local durable queue",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.attemptsTotal, m.attemptLatency, m.validationFailures, m.queueDepth)
	return m
}

func (m *LeadMetrics) ObserveSubmission(service, outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *LeadMetrics) ObserveAttempt(strategy string, success bool, seconds float64) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "succeeded"
	}
	m.attemptsTotal.WithLabelValues(strategy, status).Inc()
	m.attemptLatency.WithLabelValues(strategy).Observe(seconds)
}

func (m *LeadMetrics) ObserveValidationFailure(service, step string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(service, step).Inc()
}

func (m *LeadMetrics) SetQueueDepth(depth int64) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}
