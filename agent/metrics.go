package agent

import "github.com/prometheus/client_golang/prometheus"

func init() {
	prometheus.MustRegister(submissionsTotal)
	prometheus.MustRegister(statusReportsTotal)
	prometheus.MustRegister(fetchFailuresTotal)
	prometheus.MustRegister(reportRetriesTotal)
	prometheus.MustRegister(cacheEntries)
}

var submissionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "jobbergate",
		Subsystem: "agent",
		Name:      "submissions_total",
		Help:      "Number of job submissions by result.",
	},
	[]string{"result"},
)

var statusReportsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "jobbergate",
		Subsystem: "agent",
		Name:      "status_reports_total",
		Help:      "Number of job status updates reported by status.",
	},
	[]string{"status"},
)

var fetchFailuresTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "jobbergate",
		Subsystem: "agent",
		Name:      "fetch_failures_total",
		Help:      "Number of job listing fetches that failed, by task.",
	},
	[]string{"task"},
)

var reportRetriesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "jobbergate",
		Subsystem: "agent",
		Name:      "report_retries_total",
		Help:      "Number of submitted-reports deferred to a later cycle.",
	},
)

var cacheEntries = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "jobbergate",
		Subsystem: "agent",
		Name:      "submission_cache_entries",
		Help:      "Number of live submission cache entries.",
	},
)
