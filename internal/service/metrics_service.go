package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the content API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	gradingLatency  prometheus.Histogram
	grantsIssued    prometheus.Counter
	deviceAdmitted  prometheus.Counter
	deviceRejected  prometheus.Counter
	cacheLatency    prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
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

	// Buckets chosen around the sub-300ms p95 grading target.
	gradingLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "quiz_grading_duration_seconds",
		Help:    "Wall-clock duration of quiz grading",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.2, 0.3, 0.5, 1},
	})

	grantsIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "playback_grants_issued_total",
		Help: "Total playback grants issued",
	})

	deviceAdmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "device_admissions_total",
		Help: "Total admitted device checks",
	})

	deviceRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "device_rejections_total",
		Help: "Total device checks rejected over the limit",
	})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, gradingLatency, grantsIssued,
		deviceAdmitted, deviceRejected, cacheLatency, cacheHits, cacheMisses, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		gradingLatency:  gradingLatency,
		grantsIssued:    grantsIssued,
		deviceAdmitted:  deviceAdmitted,
		deviceRejected:  deviceRejected,
		cacheLatency:    cacheLatency,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveGradingLatency records one grading pass.
func (m *MetricsService) ObserveGradingLatency(duration time.Duration) {
	if m == nil {
		return
	}
	m.gradingLatency.Observe(duration.Seconds())
}

// RecordGrantIssued counts a successful playback grant.
func (m *MetricsService) RecordGrantIssued() {
	if m == nil {
		return
	}
	m.grantsIssued.Inc()
}

// RecordDeviceAdmission counts the outcome of a device gate decision.
func (m *MetricsService) RecordDeviceAdmission(admitted bool) {
	if m == nil {
		return
	}
	if admitted {
		m.deviceAdmitted.Inc()
	} else {
		m.deviceRejected.Inc()
	}
}

// RecordCacheOperation records cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
