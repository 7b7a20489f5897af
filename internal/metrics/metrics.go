// Package metrics exposes Prometheus collectors for the API and renderer.
package metrics

import (
	"net/http"
	"time"

	"github.com/goliatone/go-manual/internal/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "manual"

// Metrics holds every collector of the service on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RendersTotal    *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec
	UploadsTotal    *prometheus.CounterVec
	UploadBytes     prometheus.Counter
}

var _ render.Observer = (*Metrics)(nil)

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total number of procedure calls",
			},
			[]string{"procedure", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Duration of procedure calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"procedure"},
		),
		RendersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "render",
				Name:      "total",
				Help:      "Total number of rendered contents by path",
			},
			[]string{"kind"},
		),
		RenderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "render",
				Name:      "duration_seconds",
				Help:      "Duration of content rendering in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
			},
			[]string{"kind"},
		),
		UploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "files",
				Name:      "uploads_total",
				Help:      "Total number of upload attempts",
			},
			[]string{"status"},
		),
		UploadBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "files",
				Name:      "upload_bytes_total",
				Help:      "Total number of stored upload bytes",
			},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRender records one render.
func (m *Metrics) ObserveRender(kind render.Kind, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RendersTotal.WithLabelValues(string(kind)).Inc()
	m.RenderDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// ObserveRequest records one procedure call.
func (m *Metrics) ObserveRequest(procedure string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(procedure, http.StatusText(status)).Inc()
	m.RequestDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// ObserveUpload records an upload attempt and its stored size.
func (m *Metrics) ObserveUpload(ok bool, size int64) {
	if m == nil {
		return
	}
	if !ok {
		m.UploadsTotal.WithLabelValues("failed").Inc()
		return
	}
	m.UploadsTotal.WithLabelValues("stored").Inc()
	if size > 0 {
		m.UploadBytes.Add(float64(size))
	}
}
