// Package metrics provides request metrics collection and reporting.
//
// Metrics collects in-process statistics about response latency, status
// codes and throughput (RPS). It backs the admin status endpoint and the
// load generator report.
//
// # Basic Usage
//
//	m := metrics.New()
//
//	start := time.Now()
//	// ... serve a request ...
//	m.RecordResponse(200, time.Since(start))
//
//	snap := m.Snapshot()
//	fmt.Printf("Total: %d, RPS: %.2f, P99: %v\n",
//	    snap.TotalRequests, snap.RPS, snap.P99Latency)
//
// # Prometheus
//
// Collector exposes the same signals as Prometheus series, plus worker pool
// and async executor gauges. Its methods match the worker.Hooks signatures so
// they can be plugged straight into a pool:
//
//	reg := prometheus.NewRegistry()
//	c := metrics.NewCollector(reg)
//	pool := worker.NewPoolWithConfig(worker.PoolConfig{
//	    NumWorkers: 4,
//	    Hooks: worker.Hooks{
//	        OnSubmit: c.JobSubmitted,
//	        OnStart:  c.JobStarted,
//	        OnFinish: c.JobFinished,
//	    },
//	})
//
// # Thread Safety
//
// Counters are atomic; latency samples and status counts are guarded by a
// mutex. All operations are safe for concurrent access.
package metrics
