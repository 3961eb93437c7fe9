package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	webhookEvents   *prometheus.CounterVec
	gatewayCalls    *prometheus.HistogramVec
	accessDenials   *prometheus.CounterVec
	geocodeRequests *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiftwise",
			Name:      "webhook_events_total",
			Help:      "Billing webhook events by type and outcome.",
		}, []string{"type", "outcome"}),
		gatewayCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shiftwise",
			Name:      "billing_gateway_call_seconds",
			Help:      "Latency of billing provider calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		accessDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiftwise",
			Name:      "access_denials_total",
			Help:      "Requests rejected by the access gate.",
		}, []string{"redirect"}),
		geocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiftwise",
			Name:      "geocode_requests_total",
			Help:      "Geocoding lookups by source.",
		}, []string{"source"}),
	}
	reg.MustRegister(
		m.webhookEvents,
		m.gatewayCalls,
		m.accessDenials,
		m.geocodeRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) WebhookEvent(eventType, outcome string) {
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// ObserveGatewayCall records the duration since start for operation.
func (m *Metrics) ObserveGatewayCall(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.gatewayCalls.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}

func (m *Metrics) AccessDenied(redirect string) {
	m.accessDenials.WithLabelValues(redirect).Inc()
}

func (m *Metrics) GeocodeRequest(source string) {
	m.geocodeRequests.WithLabelValues(source).Inc()
}
