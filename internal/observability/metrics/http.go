package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "claimsense"

type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	extractionTotal   *prometheus.CounterVec
	verificationTotal *prometheus.CounterVec
	decisionTotal     *prometheus.CounterVec
	assistantTotal    *prometheus.CounterVec
	ledgerAppendTotal *prometheus.CounterVec
	loginTotal        *prometheus.CounterVec
	upstreamUp        *prometheus.GaugeVec
	breakerOpen       *prometheus.GaugeVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	m := &HTTPServerMetrics{
		registry: registry,
		service:  service,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Total HTTP requests processed.", ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "HTTP request duration in seconds.", ConstLabels: constLabels, Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		requestInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "in_flight_requests",
			Help: "Number of in-flight HTTP requests.", ConstLabels: constLabels,
		}),
		extractionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "extraction", Name: "requests_total",
			Help: "Document extraction calls by outcome class.", ConstLabels: constLabels,
		}, []string{"outcome"}),
		verificationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "claims", Name: "verification_total",
			Help: "Document verification results by gate.", ConstLabels: constLabels,
		}, []string{"stage"}),
		decisionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "claims", Name: "decisions_total",
			Help: "Eligibility decisions by risk tier and outcome.", ConstLabels: constLabels,
		}, []string{"risk_tier", "eligible"}),
		assistantTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "assistant", Name: "replies_total",
			Help: "Assistant replies by source and detected language.", ConstLabels: constLabels,
		}, []string{"source", "language"}),
		ledgerAppendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ledger", Name: "appends_total",
			Help: "Claim ledger appends by status.", ConstLabels: constLabels,
		}, []string{"status"}),
		loginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "auth", Name: "logins_total",
			Help: "Login attempts by result.", ConstLabels: constLabels,
		}, []string{"result"}),
		upstreamUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "upstream_up",
			Help: "Whether the last keep-alive probe of a backend succeeded.", ConstLabels: constLabels,
		}, []string{"upstream"}),
		breakerOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "circuit_open",
			Help: "Whether the circuit breaker for an operation is open.", ConstLabels: constLabels,
		}, []string{"operation"}),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
		m.extractionTotal,
		m.verificationTotal,
		m.decisionTotal,
		m.assistantTotal,
		m.ledgerAppendTotal,
		m.loginTotal,
		m.upstreamUp,
		m.breakerOpen,
	)
	return m
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware labels requests by route pattern so path values never become label values.
func (m *HTTPServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		m.requestTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordExtraction(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.extractionTotal.WithLabelValues(outcome).Inc()
}

func (m *HTTPServerMetrics) RecordVerification(stage string) {
	m.verificationTotal.WithLabelValues(stage).Inc()
}

func (m *HTTPServerMetrics) RecordDecision(riskTier string, eligible bool) {
	m.decisionTotal.WithLabelValues(riskTier, strconv.FormatBool(eligible)).Inc()
}

func (m *HTTPServerMetrics) RecordAssistantReply(fallback bool, language string) {
	source := "remote"
	if fallback {
		source = "fallback"
	}
	m.assistantTotal.WithLabelValues(source, language).Inc()
}

func (m *HTTPServerMetrics) RecordLedgerAppend(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ledgerAppendTotal.WithLabelValues(status).Inc()
}

func (m *HTTPServerMetrics) RecordLogin(result string) {
	m.loginTotal.WithLabelValues(result).Inc()
}

func (m *HTTPServerMetrics) SetUpstreamUp(upstream string, up bool) {
	m.upstreamUp.WithLabelValues(upstream).Set(boolGauge(up))
}

func (m *HTTPServerMetrics) SetCircuitOpen(operation string, open bool) {
	m.breakerOpen.WithLabelValues(operation).Set(boolGauge(open))
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
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
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
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

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
