package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "billing_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	documentCreateTotal   *prometheus.CounterVec
	documentCreateLatency *prometheus.HistogramVec

	documentExportTotal   *prometheus.CounterVec
	documentExportLatency *prometheus.HistogramVec

	documentSendTotal   *prometheus.CounterVec
	documentSendLatency *prometheus.HistogramVec

	dashboardTotal   *prometheus.CounterVec
	dashboardLatency *prometheus.HistogramVec

	renderPagesTotal prometheus.Counter
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		documentCreateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "document_create_total",
				Help: "Total document create operations by kind and result",
			},
			[]string{"kind", "result"},
		)
		documentCreateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "document_create_latency_seconds",
				Help:    "Document create latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "result"},
		)

		documentExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "document_export_total",
				Help: "Total document PDF export operations by kind and result",
			},
			[]string{"kind", "result"},
		)
		documentExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "document_export_latency_seconds",
				Help:    "Document PDF export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "result"},
		)

		documentSendTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "document_send_total",
				Help: "Total document email deliveries by kind and result",
			},
			[]string{"kind", "result"},
		)
		documentSendLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "document_send_latency_seconds",
				Help:    "Document email delivery latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "result"},
		)

		dashboardTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dashboard_total",
				Help: "Total dashboard aggregation requests by result",
			},
			[]string{"result"},
		)
		dashboardLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "dashboard_latency_seconds",
				Help:    "Dashboard aggregation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		renderPagesTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "render_pages_total",
				Help: "Total PDF pages produced by the layout engine",
			},
		)

		prometheus.MustRegister(
			documentCreateTotal,
			documentCreateLatency,
			documentExportTotal,
			documentExportLatency,
			documentSendTotal,
			documentSendLatency,
			dashboardTotal,
			dashboardLatency,
			renderPagesTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveDocumentCreate records create latency and result.
func ObserveDocumentCreate(kind, result string, duration time.Duration) {
	kind, result = normalize(kind, result)
	if documentCreateTotal != nil {
		documentCreateTotal.WithLabelValues(kind, result).Inc()
	}
	if documentCreateLatency != nil {
		documentCreateLatency.WithLabelValues(kind, result).Observe(duration.Seconds())
	}
}

// ObserveDocumentExport records PDF export latency and result.
func ObserveDocumentExport(kind, result string, duration time.Duration) {
	kind, result = normalize(kind, result)
	if documentExportTotal != nil {
		documentExportTotal.WithLabelValues(kind, result).Inc()
	}
	if documentExportLatency != nil {
		documentExportLatency.WithLabelValues(kind, result).Observe(duration.Seconds())
	}
}

// ObserveDocumentSend records email delivery latency and result.
func ObserveDocumentSend(kind, result string, duration time.Duration) {
	kind, result = normalize(kind, result)
	if documentSendTotal != nil {
		documentSendTotal.WithLabelValues(kind, result).Inc()
	}
	if documentSendLatency != nil {
		documentSendLatency.WithLabelValues(kind, result).Observe(duration.Seconds())
	}
}

// ObserveDashboard records aggregation latency and result.
func ObserveDashboard(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if dashboardTotal != nil {
		dashboardTotal.WithLabelValues(result).Inc()
	}
	if dashboardLatency != nil {
		dashboardLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddRenderedPages adds to the rendered page counter.
func AddRenderedPages(count int) {
	if count <= 0 {
		return
	}
	if renderPagesTotal != nil {
		renderPagesTotal.Add(float64(count))
	}
}

func normalize(kind, result string) (string, string) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	return kind, result
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
