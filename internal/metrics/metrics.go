// Package metrics exposes Prometheus collectors for the scraping pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scraperPagesTotal     *prometheus.CounterVec
	scraperFailuresTotal  *prometheus.CounterVec
	scraperEmailsTotal    prometheus.Counter
	scraperRecordsWritten prometheus.Counter
	scraperActiveWorkers  *prometheus.GaugeVec
	scraperQueueDepth     *prometheus.GaugeVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call more than
// once.
func Init() {
	once.Do(func() {
		scraperPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_total",
				Help: "Total pages fetched, labeled by pipeline stage.",
			},
			[]string{"stage"},
		)

		scraperFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_failures_total",
				Help: "Total per-item failures, labeled by stage and reason.",
			},
			[]string{"stage", "reason"},
		)

		scraperEmailsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_emails_total",
				Help: "Total email addresses extracted from profile pages.",
			},
		)

		scraperRecordsWritten = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_records_written_total",
				Help: "Total contact records written to the result file.",
			},
		)

		scraperActiveWorkers = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scraper_active_workers",
				Help: "Workers currently running, labeled by stage.",
			},
			[]string{"stage"},
		)

		scraperQueueDepth = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scraper_queue_depth",
				Help: "Buffered items per stage queue.",
			},
			[]string{"queue"},
		)
	})
}

// ObservePage counts one fetched page for the given stage.
func ObservePage(stage string) {
	scraperPagesTotal.WithLabelValues(stage).Inc()
}

// ObserveFailure counts one per-item failure for the given stage and reason.
func ObserveFailure(stage, reason string) {
	scraperFailuresTotal.WithLabelValues(stage, reason).Inc()
}

// ObserveEmail counts one extracted email address.
func ObserveEmail() {
	scraperEmailsTotal.Inc()
}

// ObserveRecordWritten counts one record flushed to the result file.
func ObserveRecordWritten() {
	scraperRecordsWritten.Inc()
}

// IncActiveWorkers increments the active workers gauge for a stage.
func IncActiveWorkers(stage string) {
	scraperActiveWorkers.WithLabelValues(stage).Inc()
}

// DecActiveWorkers decrements the active workers gauge for a stage.
func DecActiveWorkers(stage string) {
	scraperActiveWorkers.WithLabelValues(stage).Dec()
}

// SetQueueDepth records the buffered item count for a queue.
func SetQueueDepth(queue string, depth int) {
	scraperQueueDepth.WithLabelValues(queue).Set(float64(depth))
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewServer builds an HTTP server serving /metrics on addr.
func NewServer(addr string) *http.Server {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
