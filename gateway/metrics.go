package gateway

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "localchef"
	metricsSubsystem = "gateway"
)

// Metrics collects request and session-expiry telemetry for a gateway client.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	expiries prometheus.Counter
}

// NewMetrics creates the gateway collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "requests_total",
				Help:      "Backend requests by method and response status (\"error\" for transport failures)",
			},
			[]string{"method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Backend request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		expiries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "session_expiries_total",
				Help:      "Sessions cleared because the backend rejected the credential",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.expiries)
	}
	return m
}

// RecordRequest records one completed request. status 0 means the request failed in transport.
func (m *Metrics) RecordRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, label).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// RecordSessionExpiry counts a session cleared by the expiry policy
func (m *Metrics) RecordSessionExpiry() {
	if m == nil {
		return
	}
	m.expiries.Inc()
}
