package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic and scheduling outcomes.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	assignments     *prometheus.CounterVec
	findings        *prometheus.CounterVec
	reportDuration  prometheus.Histogram
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

	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exam_assignments_total",
		Help: "Assignment requests by kind and outcome",
	}, []string{"kind", "outcome"})

	findings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_findings_total",
		Help: "Schedule findings reported by type",
	}, []string{"type"})

	reportDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_report_duration_seconds",
		Help:    "Time spent analysing a schedule snapshot",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, assignments, findings, reportDuration, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		assignments:     assignments,
		findings:        findings,
		reportDuration:  reportDuration,
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

// Registry returns the underlying collector registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// RecordAssignment counts one assignment request.
func (m *MetricsService) RecordAssignment(kind, outcome string) {
	if m == nil {
		return
	}
	m.assignments.WithLabelValues(kind, outcome).Inc()
}

// RecordFindings adds the findings of a generated report to the per-type counters.
func (m *MetricsService) RecordFindings(report *models.ConflictReport) {
	if m == nil || report == nil {
		return
	}
	for findingType, count := range report.Summary.ByType {
		m.findings.WithLabelValues(string(findingType)).Add(float64(count))
	}
}

// ObserveReport records how long a schedule analysis took.
func (m *MetricsService) ObserveReport(duration time.Duration) {
	if m == nil {
		return
	}
	m.reportDuration.Observe(duration.Seconds())
}
