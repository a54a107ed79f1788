// Package metrics exposes license lifecycle counters in Prometheus format.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "silo"

type Metrics struct {
	registry            *prometheus.Registry
	issued              prometheus.Counter
	validations         *prometheus.CounterVec
	revocations         *prometheus.CounterVec
	deviceRegistrations *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		issued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "license",
			Name:      "issued_total",
			Help:      "Licenses signed and persisted.",
		}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "license",
			Name:      "validations_total",
			Help:      "Online license validations by outcome.",
		}, []string{"result"}),
		revocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "license",
			Name:      "revocations_total",
			Help:      "Revocation requests by outcome.",
		}, []string{"result"}),
		deviceRegistrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "device",
			Name:      "registrations_total",
			Help:      "Device registration requests by outcome.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.issued,
		m.validations,
		m.revocations,
		m.deviceRegistrations,
	)
	return m
}

// Result labels an outcome: success for a nil error, the error kind otherwise.
func Result(err error, success string) string {
	if err == nil {
		return success
	}
	if kind := domain.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}

func (m *Metrics) LicenseIssued() {
	if m == nil {
		return
	}
	m.issued.Inc()
}

func (m *Metrics) Validation(err error) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(Result(err, "valid")).Inc()
}

func (m *Metrics) Revocation(result string) {
	if m == nil {
		return
	}
	m.revocations.WithLabelValues(result).Inc()
}

func (m *Metrics) DeviceRegistration(result string) {
	if m == nil {
		return
	}
	m.deviceRegistrations.WithLabelValues(result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
