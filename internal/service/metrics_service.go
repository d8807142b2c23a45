package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	storeDuration     *prometheus.HistogramVec
	storeTotal        *prometheus.CounterVec
	paymentsTotal     *prometheus.CounterVec
	paymentsAmount    *prometheus.CounterVec
	snapshotsUploaded *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	storeOpCount         uint64
	storeFailureCount    uint64
	paymentCount         uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_operation_duration_seconds",
		Help:    "Latency of key-value store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "key"})

	storeTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_operations_total",
		Help: "Key-value store operations by outcome",
	}, []string{"op", "key", "outcome"})

	paymentsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_payments_total",
		Help: "Payments appended to a ledger",
	}, []string{"domain", "method"})

	paymentsAmount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_payment_amount_total",
		Help: "Sum of non-negative payment amounts appended to a ledger",
	}, []string{"domain"})

	snapshotsUploaded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backup_snapshots_total",
		Help: "Snapshot uploads by domain and outcome",
	}, []string{"domain", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeDuration, storeTotal, paymentsTotal, paymentsAmount, snapshotsUploaded, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		storeDuration:     storeDuration,
		storeTotal:        storeTotal,
		paymentsTotal:     paymentsTotal,
		paymentsAmount:    paymentsAmount,
		snapshotsUploaded: snapshotsUploaded,
	}
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveStoreOperation implements kvstore.Observer.
func (m *MetricsService) ObserveStoreOperation(op, key string, ok bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "miss_or_error"
		atomic.AddUint64(&m.storeFailureCount, 1)
	}
	m.storeDuration.WithLabelValues(op, key).Observe(duration.Seconds())
	m.storeTotal.WithLabelValues(op, key, outcome).Inc()
	atomic.AddUint64(&m.storeOpCount, 1)
}

// RecordPayment counts a payment appended to the library or payroll ledger.
func (m *MetricsService) RecordPayment(domain models.Domain, method string, amount float64) {
	if m == nil {
		return
	}
	m.paymentsTotal.WithLabelValues(string(domain), method).Inc()
	if amount > 0 {
		m.paymentsAmount.WithLabelValues(string(domain)).Add(amount)
	}
	atomic.AddUint64(&m.paymentCount, 1)
}

// RecordSnapshot counts a snapshot upload attempt.
func (m *MetricsService) RecordSnapshot(domain models.Domain, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.snapshotsUploaded.WithLabelValues(string(domain), outcome).Inc()
}

// Snapshot returns aggregated counters for the health endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		StoreOperations:          atomic.LoadUint64(&m.storeOpCount),
		StoreFailures:            atomic.LoadUint64(&m.storeFailureCount),
		PaymentsRecorded:         atomic.LoadUint64(&m.paymentCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
