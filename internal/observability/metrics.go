package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	uploadsTotal        *prometheus.CounterVec
	uploadRejectedTotal *prometheus.CounterVec
	uploadLatency       prometheus.Histogram
	summaryCacheTotal   *prometheus.CounterVec
	pluginActionsTotal  *prometheus.CounterVec
	backupDuration      *prometheus.HistogramVec
	eventsPublished     *prometheus.CounterVec
	rateLimitedTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors of the assignment service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assign_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assign_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assign_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assign_uploads_total",
			Help: "Files stored, labelled by file area.",
		}, []string{"area"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assign_uploads_rejected_total",
			Help: "Uploads rejected, labelled by reason.",
		}, []string{"reason"})

		uploadLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "assign_upload_latency_seconds",
			Help:    "Time spent validating and storing an upload.",
			Buckets: prometheus.DefBuckets,
		})

		summaryCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assign_summary_cache_total",
			Help: "Grading summary cache lookups, labelled by result.",
		}, []string{"result"})

		pluginActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assign_plugin_actions_total",
			Help: "Plugin administration actions, labelled by subtype and action.",
		}, []string{"subtype", "action"})

		backupDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assign_backup_duration_seconds",
			Help:    "Duration of backup exports and restores.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"})

		eventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assign_events_published_total",
			Help: "Domain events published, labelled by event type.",
		}, []string{"type"})

		rateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assign_rate_limited_total",
			Help: "Requests rejected by a rate limiter, labelled by limiter.",
		}, []string{"limiter"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			uploadsTotal, uploadRejectedTotal, uploadLatency,
			summaryCacheTotal, pluginActionsTotal, backupDuration, eventsPublished,
			rateLimitedTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Uploads counts stored files.
func Uploads() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsTotal
}

// UploadRejected counts rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency tracks upload processing time.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatency
}

// SummaryCache counts grading summary cache hits and misses.
func SummaryCache() *prometheus.CounterVec {
	RegisterMetrics()
	return summaryCacheTotal
}

// PluginActions counts plugin administration actions.
func PluginActions() *prometheus.CounterVec {
	RegisterMetrics()
	return pluginActionsTotal
}

// BackupDuration tracks export and restore durations.
func BackupDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return backupDuration
}

// EventsPublished counts published domain events.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublished
}

// RateLimited counts requests turned away by a rate limiter.
func RateLimited() *prometheus.CounterVec {
	RegisterMetrics()
	return rateLimitedTotal
}
