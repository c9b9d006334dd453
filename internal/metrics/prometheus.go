package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "static_server"

// Collector holds the Prometheus series exported on the admin /metrics endpoint.
type Collector struct {
	Requests       *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
	ProtocolErrors prometheus.Counter

	JobsSubmitted prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsPanicked  prometheus.Counter
	ActiveJobs    prometheus.Gauge
	JobLatency    prometheus.Histogram

	AsyncPending prometheus.Gauge
	ResultsTotal prometheus.Gauge
}

// NewCollector creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is convenient in tests.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Responses written, by endpoint and status code",
		}, []string{"endpoint", "code"}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from reading the request line to flushing the response",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		ProtocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Connections dropped because of a malformed request line",
		}),
		JobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_submitted_total",
			Help:      "Connection jobs submitted to the worker pool",
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_completed_total",
			Help:      "Connection jobs finished by a worker",
		}),
		JobsPanicked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_panicked_total",
			Help:      "Connection jobs that panicked and were recovered",
		}),
		ActiveJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "active_jobs",
			Help:      "Jobs currently executing on a worker",
		}),
		JobLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "job_duration_seconds",
			Help:      "Time a worker spent on one connection job",
			Buckets:   prometheus.DefBuckets,
		}),
		AsyncPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "async",
			Name:      "pending_tasks",
			Help:      "Delayed /async tasks not yet completed",
		}),
		ResultsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "async",
			Name:      "results",
			Help:      "Entries held by the job store",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			c.Requests,
			c.RequestLatency,
			c.ProtocolErrors,
			c.JobsSubmitted,
			c.JobsCompleted,
			c.JobsPanicked,
			c.ActiveJobs,
			c.JobLatency,
			c.AsyncPending,
			c.ResultsTotal,
		)
	}
	return c
}

// ObserveResponse records one written response.
func (c *Collector) ObserveResponse(endpoint string, status int, latency time.Duration) {
	if c == nil {
		return
	}
	c.Requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	c.RequestLatency.WithLabelValues(endpoint).Observe(latency.Seconds())
}

// ProtocolError records a dropped connection.
func (c *Collector) ProtocolError() {
	if c == nil {
		return
	}
	c.ProtocolErrors.Inc()
}

// JobSubmitted matches worker.Hooks.OnSubmit.
func (c *Collector) JobSubmitted() {
	c.JobsSubmitted.Inc()
}

// JobStarted matches worker.Hooks.OnStart.
func (c *Collector) JobStarted() {
	c.ActiveJobs.Inc()
}

// JobFinished matches worker.Hooks.OnFinish.
func (c *Collector) JobFinished(elapsed time.Duration, err error) {
	c.ActiveJobs.Dec()
	c.JobsCompleted.Inc()
	c.JobLatency.Observe(elapsed.Seconds())
	if err != nil {
		c.JobsPanicked.Inc()
	}
}

// AsyncScheduled counts a delayed task handed to the executor.
func (c *Collector) AsyncScheduled() {
	if c == nil {
		return
	}
	c.AsyncPending.Inc()
}

// AsyncDone counts a delayed task that has finished.
func (c *Collector) AsyncDone() {
	if c == nil {
		return
	}
	c.AsyncPending.Dec()
}

// SetResults updates the job store size gauge.
func (c *Collector) SetResults(n int) {
	if c == nil {
		return
	}
	c.ResultsTotal.Set(float64(n))
}
