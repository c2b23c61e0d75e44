// Package metrics exposes Prometheus metrics for the dashboard's own HTTP
// traffic and for the calls it makes to the inventory API.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors and the registry they are registered in.
type Metrics struct {
	registry *prometheus.Registry

	inFlight        prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	apiRequestsTotal   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
	apiRefreshTotal    *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight dashboard HTTP requests.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of dashboard HTTP requests.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Dashboard HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		apiRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medstock_api_requests_total",
			Help: "Total number of requests sent to the inventory API.",
		}, []string{"method", "path", "status"}),
		apiRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medstock_api_request_duration_seconds",
			Help:    "Inventory API request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		apiRefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medstock_api_token_refresh_total",
			Help: "Access token refresh attempts by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.inFlight, m.requestsTotal, m.requestDuration,
		m.apiRequestsTotal, m.apiRequestDuration, m.apiRefreshTotal,
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument measures in-flight count, status and latency of dashboard
// requests. Paths are canonicalized to keep label cardinality bounded.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		m.inFlight.Inc()
		defer m.inFlight.Dec()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		m.requestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(method, path, status).Inc()
	})
}

// ObserveAPI records one call to the inventory API. A status of 0 means the
// request failed before a response arrived.
func (m *Metrics) ObserveAPI(method, path string, status int, d time.Duration) {
	path = CanonicalPath(path)
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.apiRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.apiRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveRefresh records the outcome of an access token refresh.
func (m *Metrics) ObserveRefresh(ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.apiRefreshTotal.WithLabelValues(outcome).Inc()
}

// CanonicalPath strips the query string and replaces identifier segments
// with ":id".
func CanonicalPath(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	segs := strings.Split(p, "/")
	for i, s := range segs {
		if isIdentifier(s) {
			segs[i] = ":id"
		}
	}
	return strings.Join(segs, "/")
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '-' || r == '%' || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F'):
		default:
			return false
		}
	}
	return digits > 0
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
