// Package metrics exposes task bridge counters to Prometheus.
//
// Metrics:
//
//	plx_tasks_submitted_total{op}        tasks accepted by the runner
//	plx_tasks_spawn_failures_total{op}   submissions rejected before a worker started
//	plx_tasks_finished_total{op,outcome} workers that returned, outcome is "success" or "error"
//	plx_tasks_delivered_total{op}        results handed to a callback
//	plx_tasks_discarded_total{op}        results dropped because their scope had closed
//	plx_task_duration_seconds{op}        time spent in the worker
//	plx_tasks_in_flight                  workers started and not yet finished
//
// Each [Collector] owns its registry so several can coexist in one process.
package metrics

import (
	"net/http"
	"time"

	"github.com/desertthunder/plx/internal/tasks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ tasks.Recorder = (*Collector)(nil)

// Collector records task lifecycle events as Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	submitted     *prometheus.CounterVec
	spawnFailures *prometheus.CounterVec
	finished      *prometheus.CounterVec
	delivered     *prometheus.CounterVec
	discarded     *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	inFlight      prometheus.Gauge
}

// NewCollector creates a collector with all metrics registered on a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plx_tasks_submitted_total",
			Help: "Total number of tasks accepted by the runner",
		}, []string{"op"}),
		spawnFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plx_tasks_spawn_failures_total",
			Help: "Total number of submissions rejected before a worker started",
		}, []string{"op"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plx_tasks_finished_total",
			Help: "Total number of workers that finished, by outcome",
		}, []string{"op", "outcome"}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plx_tasks_delivered_total",
			Help: "Total number of results delivered to a callback",
		}, []string{"op"}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plx_tasks_discarded_total",
			Help: "Total number of results discarded because their scope was closed",
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "plx_task_duration_seconds",
			Help:    "Time spent running task work in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plx_tasks_in_flight",
			Help: "Number of workers currently running",
		}),
	}

	c.registry.MustRegister(
		c.submitted,
		c.spawnFailures,
		c.finished,
		c.delivered,
		c.discarded,
		c.duration,
		c.inFlight,
	)
	return c
}

// Registry returns the registry the collector's metrics live on.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) TaskSubmitted(op string) {
	c.submitted.WithLabelValues(op).Inc()
	c.inFlight.Inc()
}

func (c *Collector) SpawnFailed(op string)   { c.spawnFailures.WithLabelValues(op).Inc() }
func (c *Collector) TaskDelivered(op string) { c.delivered.WithLabelValues(op).Inc() }
func (c *Collector) TaskDiscarded(op string) { c.discarded.WithLabelValues(op).Inc() }

func (c *Collector) TaskFinished(op string, failed bool, elapsed time.Duration) {
	outcome := "success"
	if failed {
		outcome = "error"
	}
	c.inFlight.Dec()
	c.finished.WithLabelValues(op, outcome).Inc()
	c.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}
