package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests         *prometheus.CounterVec
	LatencyMS        *prometheus.HistogramVec
	WebhookEvents    *prometheus.CounterVec
	CheckoutSessions *prometheus.CounterVec
	OutboxPublished  prometheus.Counter
}

func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	m := &ServerMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tiendas",
			Subsystem: service,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tiendas",
			Subsystem: service,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tiendas",
			Subsystem: service,
			Name:      "webhook_events_total",
			Help:      "Payment webhook deliveries by outcome.",
		}, []string{"outcome"}),
		CheckoutSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tiendas",
			Subsystem: service,
			Name:      "checkout_sessions_total",
			Help:      "Checkout sessions requested from the payment processor.",
		}, []string{"result"}),
		OutboxPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tiendas",
			Subsystem: service,
			Name:      "outbox_published_total",
			Help:      "Outbox records published to the broker.",
		}),
	}
	reg.MustRegister(m.Requests, m.LatencyMS, m.WebhookEvents, m.CheckoutSessions, m.OutboxPublished)
	return m
}

// WebhookOutcome and CheckoutResult let domain services report without
// importing prometheus. Both are nil-safe.
func (m *ServerMetrics) WebhookOutcome(outcome string) {
	if m == nil {
		return
	}
	m.WebhookEvents.WithLabelValues(outcome).Inc()
}

func (m *ServerMetrics) CheckoutResult(result string) {
	if m == nil {
		return
	}
	m.CheckoutSessions.WithLabelValues(result).Inc()
}

func (m *ServerMetrics) Published(n int) {
	if m == nil {
		return
	}
	m.OutboxPublished.Add(float64(n))
}

func Handler() http.Handler {
	return promhttp.Handler()
}
