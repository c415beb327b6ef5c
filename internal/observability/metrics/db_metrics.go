package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "invoices_pending",
			Help: "Invoices currently in pending status",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM documents WHERE kind = 'invoice' AND status = 'pending'")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "invoices_overdue",
			Help: "Invoices currently in overdue status",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM documents WHERE kind = 'invoice' AND status = 'overdue'")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
