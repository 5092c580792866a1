package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	reviewTotal    *prometheus.CounterVec
	reviewDuration *prometheus.HistogramVec
	reviewInFlight prometheus.Gauge
	queueLag       prometheus.Histogram
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	m := &WorkerMetrics{
		registry: registry,
		reviewTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "worker", Name: "claim_review_total",
			Help: "Reviewed claims by priority and status.", ConstLabels: constLabels,
		}, []string{"priority", "status"}),
		reviewDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "worker", Name: "claim_review_duration_seconds",
			Help: "Claim review duration in seconds by status.", ConstLabels: constLabels, Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		reviewInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "worker", Name: "claim_review_in_flight",
			Help: "Number of claims currently being reviewed.", ConstLabels: constLabels,
		}),
		queueLag: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "worker", Name: "queue_lag_seconds",
			Help:        "Delay between claim submission and review start.",
			ConstLabels: constLabels,
			Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		}),
	}
	registry.MustRegister(m.reviewTotal, m.reviewDuration, m.reviewInFlight, m.queueLag)
	return m
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartReview() {
	m.reviewInFlight.Inc()
}

func (m *WorkerMetrics) FinishReview(priority string, duration time.Duration, err error) {
	m.reviewInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
		priority = "none"
	}
	m.reviewTotal.WithLabelValues(priority, status).Inc()
	m.reviewDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.Observe(lag.Seconds())
}
