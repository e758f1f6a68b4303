package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the portal's Prometheus collectors. A nil *Metrics is valid
// and records nothing, so tests and the CLI can skip it.
type Metrics struct {
	registry *prometheus.Registry

	stageAdvances     *prometheus.CounterVec
	projectsCreated   *prometheus.CounterVec
	notificationsSent *prometheus.CounterVec
	outboxOutcomes    *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a private registry together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		stageAdvances: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patentdesk",
			Name:      "stage_advances_total",
			Help:      "Project stage advances by service type and destination stage.",
		}, []string{"service_type", "stage"}),
		projectsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patentdesk",
			Name:      "projects_created_total",
			Help:      "Projects created by service type and origin.",
		}, []string{"service_type", "origin"}),
		notificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patentdesk",
			Name:      "notifications_total",
			Help:      "Notification attempts by kind and outcome.",
		}, []string{"kind", "outcome"}),
		outboxOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patentdesk",
			Name:      "outbox_publish_total",
			Help:      "Outbox publish attempts by outcome.",
		}, []string{"outcome"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "patentdesk",
			Name:      "http_request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordStageAdvance(serviceType, stage string) {
	if m == nil {
		return
	}
	m.stageAdvances.WithLabelValues(serviceType, stage).Inc()
}

func (m *Metrics) RecordProjectCreated(serviceType, origin string) {
	if m == nil {
		return
	}
	m.projectsCreated.WithLabelValues(serviceType, origin).Inc()
}

func (m *Metrics) RecordNotification(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.notificationsSent.WithLabelValues(kind, outcome).Inc()
}

// RecordOutbox satisfies outbox.Recorder.
func (m *Metrics) RecordOutbox(outcome string) {
	if m == nil {
		return
	}
	m.outboxOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
