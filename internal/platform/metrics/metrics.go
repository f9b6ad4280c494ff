// Package metrics collects and exposes Prometheus metrics for the review
// engine and its HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics interface consumed by the service layer.
type Recorder interface {
	RecordCardsIngested(count int)
	RecordSessionStarted(queueSize int)
	RecordSessionCompleted(reviewed int)
	RecordGrade(quality int)
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
}

// Collector is the Prometheus-backed Recorder implementation.
type Collector struct {
	cardsIngested     prometheus.Counter
	sessionsStarted   prometheus.Counter
	sessionsCompleted prometheus.Counter
	queueSize         prometheus.Histogram
	grades            *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
}

// Ensure Collector implements Recorder interface
var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics on the given
// registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cardsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recall_cards_ingested_total",
			Help: "Total number of flashcards ingested.",
		}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recall_sessions_started_total",
			Help: "Total number of review sessions started.",
		}),
		sessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recall_sessions_completed_total",
			Help: "Total number of review sessions that graded their whole queue.",
		}),
		queueSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recall_session_queue_size",
			Help:    "Size of the due queue frozen at session start.",
			Buckets: []float64{1, 5, 10, 20, 50, 100},
		}),
		grades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recall_grades_total",
			Help: "Grades recorded, by quality value.",
		}, []string{"quality"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recall_http_requests_total",
			Help: "HTTP requests served, by method, route, and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recall_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.cardsIngested,
		c.sessionsStarted,
		c.sessionsCompleted,
		c.queueSize,
		c.grades,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

// RecordCardsIngested records a batch of ingested cards.
func (c *Collector) RecordCardsIngested(count int) {
	c.cardsIngested.Add(float64(count))
}

// RecordSessionStarted records a session start and its queue size.
func (c *Collector) RecordSessionStarted(queueSize int) {
	c.sessionsStarted.Inc()
	c.queueSize.Observe(float64(queueSize))
}

// RecordSessionCompleted records a session that finished its queue.
func (c *Collector) RecordSessionCompleted(reviewed int) {
	c.sessionsCompleted.Inc()
}

// RecordGrade records one grade by quality value.
func (c *Collector) RecordGrade(quality int) {
	c.grades.WithLabelValues(strconv.Itoa(quality)).Inc()
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopRecorder discards all metrics. Used in tests.
type NopRecorder struct{}

var _ Recorder = NopRecorder{}

func (NopRecorder) RecordCardsIngested(int)                              {}
func (NopRecorder) RecordSessionStarted(int)                             {}
func (NopRecorder) RecordSessionCompleted(int)                           {}
func (NopRecorder) RecordGrade(int)                                      {}
func (NopRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}
