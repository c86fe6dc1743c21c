// Package monitoring exposes the Prometheus instruments for the
// check-in pipeline. Collectors register on the default registry and
// are served by the /metrics endpoint of the HTTP server.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkin",
		Name:      "scans_total",
		Help:      "Credential scans processed, by event and outcome.",
	}, []string{"event", "status"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "checkin",
		Name:      "operation_duration_seconds",
		Help:      "Duration of check-in operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	exportBundleTickets = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "checkin",
		Name:      "export_bundle_tickets",
		Help:      "Tickets contained in the last generated offline bundle.",
	}, []string{"event"})
)

func RecordScan(event, status string) {
	scansTotal.WithLabelValues(event, status).Inc()
}

func ObserveOperation(operation string, start time.Time) {
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func SetExportBundleSize(event string, tickets int) {
	exportBundleTickets.WithLabelValues(event).Set(float64(tickets))
}
