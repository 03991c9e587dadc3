package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements ports.MetricsCollector on the default Prometheus
// registry, exposed by the HTTP server under /metrics.
type Collector struct {
	registrations   *prometheus.CounterVec
	releases        *prometheus.CounterVec
	undos           *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	eventsProcessed *prometheus.CounterVec

	admitted      *prometheus.GaugeVec
	pendingDepth  *prometheus.GaugeVec
	waitlistDepth *prometheus.GaugeVec

	workerPoolIdle    prometheus.Gauge
	workerPoolBusy    prometheus.Gauge
	workerPoolStopped prometheus.Gauge

	httpDuration *prometheus.HistogramVec
}

// NewCollector registers all enrolld metrics. Call it once per process;
// promauto panics on duplicate registration.
func NewCollector() *Collector {
	return &Collector{
		registrations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrolld_registrations_total",
				Help: "Total number of accepted registrations by placement",
			},
			[]string{"placement"},
		),
		releases: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrolld_releases_total",
				Help: "Total number of deregistration calls by outcome",
			},
			[]string{"outcome"},
		),
		undos: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrolld_undo_total",
				Help: "Total number of applied undo operations by action",
			},
			[]string{"action"},
		),
		rejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrolld_rejections_total",
				Help: "Total number of rejected operations by kind",
			},
			[]string{"kind"},
		),
		eventsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrolld_events_processed_total",
				Help: "Total number of events journaled by the worker pool",
			},
			[]string{"type"},
		),
		admitted: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "enrolld_admitted",
				Help: "Current number of admitted participants per activity",
			},
			[]string{"activity"},
		),
		pendingDepth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "enrolld_pending_depth",
				Help: "Current pending queue depth per activity",
			},
			[]string{"activity"},
		),
		waitlistDepth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "enrolld_waitlist_depth",
				Help: "Current waitlist depth per activity",
			},
			[]string{"activity"},
		),
		workerPoolIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "enrolld_worker_pool_idle",
				Help: "Number of idle workers",
			},
		),
		workerPoolBusy: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "enrolld_worker_pool_busy",
				Help: "Number of busy workers",
			},
		),
		workerPoolStopped: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "enrolld_worker_pool_stopped",
				Help: "Number of stopped workers",
			},
		),
		httpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "enrolld_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (c *Collector) RecordRegistration(placement string) {
	c.registrations.WithLabelValues(placement).Inc()
}

func (c *Collector) RecordRelease(outcome string) {
	c.releases.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordUndo(action string) {
	c.undos.WithLabelValues(action).Inc()
}

func (c *Collector) RecordRejection(kind string) {
	c.rejections.WithLabelValues(kind).Inc()
}

// SetActivityDepths updates the three per-activity gauges after a mutation.
func (c *Collector) SetActivityDepths(activity string, admitted, pending, waitlist int) {
	c.admitted.WithLabelValues(activity).Set(float64(admitted))
	c.pendingDepth.WithLabelValues(activity).Set(float64(pending))
	c.waitlistDepth.WithLabelValues(activity).Set(float64(waitlist))
}

// RemoveActivity drops the gauges of an activity whose creation was undone,
// so the scrape no longer reports it.
func (c *Collector) RemoveActivity(activity string) {
	c.admitted.DeleteLabelValues(activity)
	c.pendingDepth.DeleteLabelValues(activity)
	c.waitlistDepth.DeleteLabelValues(activity)
}

func (c *Collector) RecordEventProcessed(eventType string) {
	c.eventsProcessed.WithLabelValues(eventType).Inc()
}

func (c *Collector) RecordWorkerPoolStatus(idle, busy, stopped int) {
	c.workerPoolIdle.Set(float64(idle))
	c.workerPoolBusy.Set(float64(busy))
	c.workerPoolStopped.Set(float64(stopped))
}

func (c *Collector) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}
