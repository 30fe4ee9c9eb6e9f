// Package metrics exposes Prometheus collectors for queue activity.
//
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cadence"

// Recorder owns a private registry and the collectors registered on it.
type Recorder struct {
	registry *prometheus.Registry

	submitted     prometheus.Counter
	finished      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	active        prometheus.Gauge
	parallelLimit prometheus.Gauge
	outputLines   prometheus.Counter
	enrichment    *prometheus.CounterVec
	catalog       *prometheus.CounterVec
	observers     prometheus.Gauge
}

// NewRecorder builds a recorder with process and Go runtime collectors attached.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "jobs_submitted_total",
			Help: "Jobs accepted into the queue.",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "jobs_finished_total",
			Help: "Jobs that reached a terminal status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "job_duration_seconds",
			Help:    "Wall time from dispatch to terminal status.",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		}, []string{"status"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "jobs_active",
			Help: "Jobs currently downloading.",
		}),
		parallelLimit: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "parallel_limit",
			Help: "Configured maximum concurrent downloads.",
		}),
		outputLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "worker_output_lines_total",
			Help: "Lines read from worker output.",
		}),
		enrichment: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "enrichment_total",
			Help: "Metadata enrichment attempts by result.",
		}, []string{"result"}),
		catalog: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "catalog_requests_total",
			Help: "Catalog API requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		observers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "event_observers",
			Help: "Attached event stream observers.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.submitted, r.finished, r.duration, r.active, r.parallelLimit,
		r.outputLines, r.enrichment, r.catalog, r.observers,
	)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) JobSubmitted() {
	if r == nil {
		return
	}
	r.submitted.Inc()
}

func (r *Recorder) JobStarted() {
	if r == nil {
		return
	}
	r.active.Inc()
}

// JobFinished records a terminal job and its dispatch-to-finish duration.
func (r *Recorder) JobFinished(status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.active.Dec()
	r.finished.WithLabelValues(status).Inc()
	r.duration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (r *Recorder) SetParallelLimit(n int) {
	if r == nil {
		return
	}
	r.parallelLimit.Set(float64(n))
}

func (r *Recorder) OutputLine() {
	if r == nil {
		return
	}
	r.outputLines.Inc()
}

func (r *Recorder) Enrichment(result string) {
	if r == nil {
		return
	}
	r.enrichment.WithLabelValues(result).Inc()
}

func (r *Recorder) CatalogRequest(operation, outcome string) {
	if r == nil {
		return
	}
	r.catalog.WithLabelValues(operation, outcome).Inc()
}

func (r *Recorder) ObserverAttached() {
	if r == nil {
		return
	}
	r.observers.Inc()
}

func (r *Recorder) ObserverDetached() {
	if r == nil {
		return
	}
	r.observers.Dec()
}
