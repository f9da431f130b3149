package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTPRequestDuration tracks HTTP request latency.
var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "pkasla",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "path", "status"},
)

// NotificationsTotal counts notification dispatch attempts by trigger and outcome.
var NotificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "pkasla",
		Subsystem: "notify",
		Name:      "notifications_total",
		Help:      "Notification dispatch attempts by trigger and result.",
	},
	[]string{"trigger", "result"},
)

// SettingsUpdatesTotal counts successful settings updates.
var SettingsUpdatesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "pkasla",
		Subsystem: "settings",
		Name:      "updates_total",
		Help:      "Successful settings updates.",
	},
)

// NewMetricsRegistry creates a Prometheus registry with default and custom collectors.
func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequestDuration,
		NotificationsTotal,
		SettingsUpdatesTotal,
	)
	return reg
}
