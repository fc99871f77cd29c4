package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitnesspoint_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitnesspoint_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitnesspoint_import_rows_total",
			Help: "Total number of processed import rows",
		},
		[]string{"import_type", "outcome"},
	)

	ImportJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitnesspoint_import_jobs_total",
			Help: "Total number of import jobs by final status",
		},
		[]string{"status"},
	)

	ImportQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitnesspoint_import_queue_length",
			Help: "Current length of the import job queue",
		},
	)

	SubscriptionTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitnesspoint_subscription_transitions_total",
			Help: "Total number of subscription renewals and upgrades",
		},
		[]string{"action", "renewal_type"},
	)

	InvoicesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitnesspoint_invoices_created_total",
			Help: "Total number of invoices created",
		},
		[]string{"action"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitnesspoint_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitnesspoint_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordImportRow(importType, outcome string) {
	ImportRowsTotal.WithLabelValues(importType, outcome).Inc()
}

func RecordImportJob(status string) {
	ImportJobsTotal.WithLabelValues(status).Inc()
}

func RecordTransition(action, renewalType string) {
	SubscriptionTransitionsTotal.WithLabelValues(action, renewalType).Inc()
}

func RecordInvoice(action string) {
	InvoicesCreatedTotal.WithLabelValues(action).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
