package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	documentsFiledTotal *prometheus.CounterVec
	ingestConfidence    *prometheus.HistogramVec
	ingestDuration      *prometheus.HistogramVec
	authFlowsTotal      *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docuvault",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docuvault",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docuvault",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	documentsFiledTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docuvault",
			Subsystem: "ingest",
			Name:      "documents_filed_total",
			Help:      "Total documents filed to the remote drive by category.",
		},
		[]string{"service", "category"},
	)
	ingestConfidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docuvault",
			Subsystem: "ingest",
			Name:      "classification_confidence",
			Help:      "Distribution of classification confidence per filed document.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
		[]string{"service"},
	)
	ingestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docuvault",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "End-to-end ingestion duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	authFlowsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docuvault",
			Subsystem: "auth",
			Name:      "flows_total",
			Help:      "Total OAuth consent flows by phase and outcome.",
		},
		[]string{"service", "phase", "outcome"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		documentsFiledTotal,
		ingestConfidence,
		ingestDuration,
		authFlowsTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		documentsFiledTotal: documentsFiledTotal,
		ingestConfidence:    ingestConfidence,
		ingestDuration:      ingestDuration,
		authFlowsTotal:      authFlowsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	case strings.HasPrefix(path, "/v1/notifications/"):
		return "/v1/notifications/{notification_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordDocumentFiled(service, category string, confidence float64) {
	if category == "" {
		category = "unknown"
	}
	m.documentsFiledTotal.WithLabelValues(service, category).Inc()
	m.ingestConfidence.WithLabelValues(service).Observe(confidence)
}

func (m *HTTPServerMetrics) RecordIngestDuration(service string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ingestDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordAuthFlow(service, phase string, err error) {
	if phase == "" {
		phase = "unknown"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.authFlowsTotal.WithLabelValues(service, phase, outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
