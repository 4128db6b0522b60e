// Package metrics exposes Prometheus collectors for library builds, registry
// requests, compiler runs and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cellocad/cello-webapp/library"
)

const namespace = "cello"

// Metrics holds the application collectors and their registry.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	builds          *prometheus.CounterVec
	buildDuration   *prometheus.HistogramVec
	libraryEntities *prometheus.GaugeVec

	registryRequests *prometheus.CounterVec
	registryDuration *prometheus.HistogramVec

	compilerRuns     *prometheus.CounterVec
	compilerDuration prometheus.Histogram
}

// New creates the collectors and registers them, together with the process
// and Go runtime collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "path"}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "library",
			Name:      "builds_total",
			Help:      "Total number of library builds.",
		}, []string{"source", "status"}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "library",
			Name:      "build_duration_seconds",
			Help:      "Duration of library builds including registry fetches.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}, []string{"source"}),
		libraryEntities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "library",
			Name:      "entities",
			Help:      "Entity counts of the most recently built library.",
		}, []string{"kind"}),
		registryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "requests_total",
			Help:      "Total number of SynBioHub requests.",
		}, []string{"op", "status"}),
		registryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "request_duration_seconds",
			Help:      "Duration of SynBioHub requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		}, []string{"op"}),
		compilerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "compiler",
			Name:      "runs_total",
			Help:      "Total number of compiler runs.",
		}, []string{"status"}),
		compilerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "compiler",
			Name:      "run_duration_seconds",
			Help:      "Duration of compiler runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s to ~17m
		}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.builds,
		m.buildDuration,
		m.libraryEntities,
		m.registryRequests,
		m.registryDuration,
		m.compilerRuns,
		m.compilerDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps next with HTTP metrics collection.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := CanonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		m.httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordBuild records a library build from source ("synbiohub" or "local").
func (m *Metrics) RecordBuild(source string, duration time.Duration, lib *library.Library, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.builds.WithLabelValues(source, status).Inc()
	m.buildDuration.WithLabelValues(source).Observe(duration.Seconds())
	if lib == nil {
		return
	}
	stats := lib.Stats()
	m.libraryEntities.WithLabelValues("gates").Set(float64(stats.Gates))
	m.libraryEntities.WithLabelValues("input_sensors").Set(float64(stats.InputSensors))
	m.libraryEntities.WithLabelValues("output_reporters").Set(float64(stats.OutputReporters))
	m.libraryEntities.WithLabelValues("parts").Set(float64(stats.Parts))
}

// ObserveRegistryRequest records a registry request. A zero status means
// the request failed before a response arrived.
func (m *Metrics) ObserveRegistryRequest(op string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.registryRequests.WithLabelValues(op, label).Inc()
	m.registryDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordCompilerRun records a compiler run by exit code.
func (m *Metrics) RecordCompilerRun(exitCode int, duration time.Duration, err error) {
	status := "success"
	switch {
	case err != nil:
		status = "error"
	case exitCode != 0:
		status = "failed"
	}
	if duration <= 0 {
		duration = time.Millisecond
	}
	m.compilerRuns.WithLabelValues(status).Inc()
	m.compilerDuration.Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// CanonicalPath collapses user supplied path segments so label cardinality
// stays bounded: /api/projects/demo/files/log.log -> /api/projects/:name/files.
func CanonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "api" || len(parts) == 1 {
		return "/" + parts[0]
	}
	if parts[1] != "projects" {
		return "/api/" + parts[1] + canonicalTail(parts[2:])
	}
	switch len(parts) {
	case 2:
		return "/api/projects"
	case 3:
		return "/api/projects/:name"
	default:
		return "/api/projects/:name/" + parts[3]
	}
}

func canonicalTail(rest []string) string {
	if len(rest) == 0 {
		return ""
	}
	return "/" + rest[0]
}
